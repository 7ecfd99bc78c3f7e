package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"flacpress/internal/confirm"
	"flacpress/internal/convert"
	"flacpress/internal/history"
	"flacpress/internal/ledger"
	"flacpress/internal/logging"
	"flacpress/internal/preflight"
	"flacpress/internal/runlock"
	"flacpress/internal/transcode"
	"flacpress/internal/workset"
)

// runPipeline drives a full run: preflight, lock, discovery, the gated
// conversion and deletion phases, and the run summary.
func runPipeline(cmd *cobra.Command, cctx *commandContext, rootArg string) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: out,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := preflight.Run(cfg, rootArg); err != nil {
		return err
	}

	root, err := filepath.Abs(rootArg)
	if err != nil {
		return fmt.Errorf("resolve input directory: %w", err)
	}

	lock, err := runlock.Acquire(root)
	if err != nil {
		return err
	}
	defer lock.Release()

	// Truncate the ledger up front so every run starts with a clean file,
	// even one that discovers nothing or stops at the first gate.
	led, err := ledger.Open(filepath.Join(root, cfg.Ledger.Name))
	if err != nil {
		return err
	}
	defer led.Close()

	items, err := workset.Discover(root)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		logger.Info("no FLAC files found", logging.String("root", root))
		return nil
	}

	for _, collision := range workset.FindTargetCollisions(items) {
		logger.Warn("targets collide after case folding; the last conversion wins",
			logging.String(logging.FieldTarget, collision.Target),
			logging.String("sources", strings.Join(collision.Sources, ", ")),
		)
	}

	runID := uuid.NewString()
	logger.Info("run starting",
		logging.String(logging.FieldRunID, runID),
		logging.String("root", root),
		logging.Int("files", len(items)),
	)

	store := openHistory(cfg.History.Enabled, cfg.History.Path, logger)
	if store != nil {
		defer store.Close()
		if err := store.BeginRun(ctx, runID, root, time.Now(), len(items)); err != nil {
			logger.Warn("history write failed", logging.Error(err))
		}
	}

	transcoder, err := transcode.New(cfg.Encode.FFmpegBinary, cfg.Encode.Bitrate, cfg.Encode.ID3Version)
	if err != nil {
		return err
	}

	runner, err := convert.NewRunner(convert.Options{
		Logger:     logger,
		Workers:    cfg.Encode.Workers,
		Transcoder: transcoder,
		Confirmer:  commandConfirmer(cmd),
		Ledger:     led,
		History:    store,
		RunID:      runID,
	})
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx, root, items)

	if store != nil {
		finishRun(store, runID, summary, runErr, logger)
	}

	if runErr != nil {
		logger.Warn("interrupted")
		return runErr
	}

	fmt.Fprintln(out, renderSummary(summary))
	return nil
}

// commandConfirmer builds the gate confirmer on the command streams. A
// redirected stdin that is not the process stdin counts as scripted input
// and stays interactive, which keeps the gates testable.
func commandConfirmer(cmd *cobra.Command) confirm.Confirmer {
	in := cmd.InOrStdin()
	interactive := true
	if f, ok := in.(*os.File); ok {
		fd := f.Fd()
		interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return confirm.New(in, cmd.OutOrStdout(), interactive)
}

func openHistory(enabled bool, path string, logger *slog.Logger) *history.Store {
	if !enabled {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("history store unavailable", logging.Error(err))
		return nil
	}
	return store
}

func finishRun(store *history.Store, runID string, summary *convert.Summary, runErr error, logger *slog.Logger) {
	status := history.StatusCompleted
	switch {
	case runErr != nil:
		status = history.StatusInterrupted
	case summary.Declined:
		status = history.StatusDeclined
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := store.FinishRun(ctx, runID, time.Now(),
		summary.Succeeded, summary.Failed, summary.Deleted, summary.DeleteFailed, status)
	if err != nil {
		logger.Warn("history write failed", logging.Error(err))
	}
}

func renderSummary(summary *convert.Summary) string {
	tbl := newConsoleTable("Result", "Count").rightAlign(2)
	tbl.addRow("Discovered", strconv.Itoa(summary.Total))
	tbl.addRow("Converted", strconv.Itoa(summary.Succeeded))
	tbl.addRow("Failed", strconv.Itoa(summary.Failed))
	switch {
	case summary.Declined:
		tbl.addRow("Conversion", "declined")
	case summary.DeleteDeclined:
		tbl.addRow("Deletion", "declined")
	default:
		tbl.addRow("Deleted", strconv.Itoa(summary.Deleted))
		tbl.addRow("Missing at delete", strconv.Itoa(summary.DeleteMissing))
		tbl.addRow("Delete failed", strconv.Itoa(summary.DeleteFailed))
	}
	return tbl.render()
}
