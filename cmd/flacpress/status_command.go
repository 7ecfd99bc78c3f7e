package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flacpress/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [directory]",
		Short: "Report external dependency and directory readiness",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tbl := newConsoleTable("Check", "State", "Detail")
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state := "ok"
				detail := status.Command
				if !status.Available {
					state = "missing"
					detail = status.Detail
				}
				tbl.addRow(status.Name, state, detail)
			}

			if len(args) == 1 {
				result := preflight.CheckInputRoot(args[0])
				state := "ok"
				if !result.Passed {
					state = "failed"
				}
				tbl.addRow(result.Name, state, result.Detail)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tbl.render())
			return nil
		},
	}
}
