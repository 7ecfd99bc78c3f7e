package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"flacpress/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("run history is disabled in the configuration")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet.")
					return nil
				}

				tbl := newConsoleTable("Run", "Started", "Root", "Found", "Converted", "Failed", "Deleted", "Status").
					rightAlign(4, 5, 6, 7)
				for _, run := range runs {
					tbl.addRow(
						shortRunID(run.RunID),
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						run.Root,
						strconv.Itoa(run.Discovered),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						strconv.Itoa(run.Deleted),
						run.Status,
					)
				}
				fmt.Fprintln(out, tbl.render())
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-file outcomes for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.RunByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("no run matches %q", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s on %s (%s)\n", run.RunID, run.Root, run.Status)
				fmt.Fprintf(out, "Started %s", run.StartedAt.Local().Format(time.RFC1123))
				if !run.FinishedAt.IsZero() {
					fmt.Fprintf(out, ", finished %s", run.FinishedAt.Local().Format(time.RFC1123))
				}
				fmt.Fprintln(out)

				events, err := store.Events(cmd.Context(), run.RunID)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(out, "No per-file outcomes recorded.")
					return nil
				}

				tbl := newConsoleTable("#", "Phase", "Source", "Outcome", "Detail").rightAlign(1)
				for _, event := range events {
					tbl.addRow(
						strconv.FormatInt(event.Seq, 10),
						event.Phase,
						event.SourcePath,
						event.Outcome,
						event.Detail,
					)
				}
				fmt.Fprintln(out, tbl.render())
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old runs beyond the newest N",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s), kept the newest %d.\n", removed, keep)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 50, "Number of recent runs to keep")
	return cmd
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
