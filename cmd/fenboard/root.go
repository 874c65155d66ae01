package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	appcfg "github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/store"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root pre-run has loaded config.
type app struct {
	cfg     *appcfg.AppConfig
	msgs    *msgcat.Catalog
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "fenboard",
		Short:         "Render chess position notation as text diagrams and images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stdout as well")

	root.AddCommand(newRenderCmd(a), newEncodeCmd(a), newApplyCmd(a), newArchiveCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := appcfg.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if !a.verbose {
		// keep stdout for diagrams
		cfg.Log.Console = false
		if !cfg.Log.ToFile {
			cfg.Log.Level = "warn"
		}
	}
	if err := obslog.Init(cfg.Log); err != nil {
		return err
	}
	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return err
	}
	a.cfg, a.msgs = cfg, msgs
	return nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if a.cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for --session")
	}
	return store.Open(ctx, a.cfg.RedisURL, a.cfg.SessionTTL)
}

// notationArg takes the first argument, or all of stdin when there is none.
func notationArg(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
