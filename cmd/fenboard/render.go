package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/fen"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/viewer"
	"github.com/spf13/cobra"
)

type renderOpts struct {
	session string
	viewer  string
	pngPath string
	flip    bool
	square  int
	summary bool
	timeout time.Duration
}

func newRenderCmd(a *app) *cobra.Command {
	o := &renderOpts{}
	cmd := &cobra.Command{
		Use:   "render [FEN]",
		Short: "Print the text diagram of a position",
		Long: `Decodes the layout field of a position notation and prints a bordered diagram.
The notation is read from the arguments, from stdin, or from a stored session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.session, "session", "", "load the notation of a stored session")
	f.StringVar(&o.viewer, "viewer", "", "fetch --session from a viewer at this base URL instead of Redis")
	f.StringVar(&o.pngPath, "png", "", "also write a PNG image to this file")
	f.BoolVar(&o.flip, "flip", false, "draw the PNG from Black's side")
	f.IntVar(&o.square, "square", 0, "PNG square size in pixels (default from BOARD_PNG_SQUARE)")
	f.BoolVar(&o.summary, "summary", false, "print a one-paragraph summary after the diagram")
	f.DurationVar(&o.timeout, "timeout", 10*time.Second, "per-request timeout for --viewer")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string, o *renderOpts) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	snap, err := a.snapshotFor(ctx, cmd, args, o)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := snap.RenderText(out); err != nil {
		return err
	}
	if o.summary {
		fmt.Fprintln(out, a.summary(snap))
	}
	if o.pngPath == "" {
		return nil
	}

	grid, err := snap.Grid()
	if err != nil {
		return err
	}
	size := o.square
	if size <= 0 {
		size = a.cfg.PNGSquareSize
	}
	img, err := board.NewPNGRenderer(size).RenderPNG(ctx, grid, board.PNGOptions{
		Highlight: board.HighlightMove(snap.LastMove()),
		Header:    viewer.Header(a.msgs, snap),
		Flip:      o.flip,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.pngPath, img, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), a.msgs.RenderOr("cli.png_written",
		map[string]any{"Bytes": len(img), "Path": o.pngPath}, o.pngPath))
	return nil
}

func (a *app) snapshotFor(ctx context.Context, cmd *cobra.Command, args []string, o *renderOpts) (game.Snapshot, error) {
	switch {
	case o.session != "" && o.viewer != "":
		snap, err := viewer.NewClient(o.viewer, viewer.WithTimeout(o.timeout)).Snapshot(ctx, o.session)
		if err != nil {
			return game.Snapshot{}, err
		}
		return *snap, nil
	case o.session != "":
		st, err := a.openStore(ctx)
		if err != nil {
			return game.Snapshot{}, err
		}
		defer st.Close()
		snap, err := st.Load(ctx, o.session)
		if err != nil {
			return game.Snapshot{}, err
		}
		if snap == nil {
			return game.Snapshot{}, fmt.Errorf("unknown session %s", o.session)
		}
		return *snap, nil
	}

	notation, err := notationArg(args, cmd.InOrStdin())
	if err != nil {
		return game.Snapshot{}, err
	}
	st := game.New("")
	st.Apply(game.Delta{Notation: notation})
	return st.Snapshot(), nil
}

func (a *app) summary(snap game.Snapshot) string {
	turn := "White"
	if pos, err := snap.Position(); err == nil && pos.Turn == fen.Black {
		turn = "Black"
	}
	return a.msgs.RenderOr("board.summary", map[string]any{
		"Session":  snap.Session,
		"Turn":     turn,
		"Plies":    len(snap.History),
		"LastMove": snap.LastMove(),
	}, snap.Session)
}
