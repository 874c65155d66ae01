package main

import (
	"fmt"

	"github.com/park285/cheese-board/internal/fen"
	"github.com/spf13/cobra"
)

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [FEN]",
		Short: "Normalise a notation and print all six fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			notation, err := notationArg(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			pos, err := fen.ParsePosition(notation)
			if err != nil {
				return err
			}
			full := pos.String()
			fmt.Fprintln(cmd.OutOrStdout(), a.msgs.RenderOr("cli.encoded", map[string]any{"FEN": full}, full))
			return nil
		},
	}
}
