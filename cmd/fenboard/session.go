package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/game"
	"github.com/spf13/cobra"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		session  string
		notation string
		moves    []string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write a notation and move records into a stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(session) == "" {
				session = game.NewSessionID()
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Apply(ctx, session, game.Delta{Notation: notation, Moves: moves})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.summary(*snap))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&session, "session", "", "session id (a new one is generated when empty)")
	f.StringVar(&notation, "fen", "", "replacement position notation")
	f.StringSliceVar(&moves, "move", nil, "UCI move records to append")
	return cmd
}

func newArchiveCmd(a *app) *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store a finished session with its PGN in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(session) == "" {
				return fmt.Errorf("--session is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			snap, err := st.Load(ctx, session)
			if err != nil {
				return err
			}
			if snap == nil {
				return fmt.Errorf("unknown session %s", session)
			}

			repo, closeRepo, err := archive.OpenPostgres(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer closeRepo()

			g, err := archive.Record(ctx, repo, *snap, snap.StartedAt)
			if err != nil {
				return err
			}
			result := g.Result
			if result == "" {
				result = "unfinished"
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.msgs.RenderOr("cli.archived",
				map[string]any{"Session": g.Session, "ID": g.ID, "Result": result}, g.Session))
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session to archive")
	return cmd
}
