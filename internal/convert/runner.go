package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"flacpress/internal/confirm"
	"flacpress/internal/history"
	"flacpress/internal/ledger"
	"flacpress/internal/logging"
	"flacpress/internal/workset"
)

// Transcoder converts a single source file into target.
type Transcoder interface {
	Transcode(ctx context.Context, source, target string) error
}

// Stage identifies where in the pipeline an item failed.
type Stage string

const (
	StageDirectory Stage = "directory"
	StageTranscode Stage = "transcode"
	StageVerify    Stage = "verify"
	StageDelete    Stage = "delete"
)

// Failure records one item that did not make it through a phase.
type Failure struct {
	Item  workset.Item
	Stage Stage
	Err   error
}

// Summary holds the counters for a completed (or aborted) run.
type Summary struct {
	Total           int
	Succeeded       int
	Failed          int
	Deleted         int
	DeleteMissing   int
	DeleteFailed    int
	Declined        bool
	DeleteDeclined  bool
	ConvertFailures []Failure
	DeleteFailures  []Failure
}

// Options configures a Runner. Transcoder, Confirmer, and Ledger are
// required; History is optional.
type Options struct {
	Logger     *slog.Logger
	Workers    int
	Transcoder Transcoder
	Confirmer  confirm.Confirmer
	Ledger     *ledger.Ledger
	History    *history.Store
	RunID      string
}

// Runner executes the conversion and deletion phases for one input tree.
type Runner struct {
	logger     *slog.Logger
	workers    int
	transcoder Transcoder
	confirmer  confirm.Confirmer
	ledger     *ledger.Ledger
	history    *history.Store
	runID      string

	eventSeq atomic.Int64
}

// NewRunner validates options and builds a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Transcoder == nil {
		return nil, errors.New("convert: transcoder is required")
	}
	if opts.Confirmer == nil {
		return nil, errors.New("convert: confirmer is required")
	}
	if opts.Ledger == nil {
		return nil, errors.New("convert: ledger is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		logger:     logging.NewComponentLogger(logger, "convert"),
		workers:    workers,
		transcoder: opts.Transcoder,
		confirmer:  opts.Confirmer,
		ledger:     opts.Ledger,
		history:    opts.History,
		runID:      opts.RunID,
	}, nil
}

// Run drives both phases over items. The conversion gate guards the whole
// run; the deletion gate appears only when at least one file converted.
// Failures are isolated per item and never stop the run, but deletion only
// ever touches sources whose conversion succeeded. An interrupt surfaces as
// the context error alongside the partial summary.
func (r *Runner) Run(ctx context.Context, root string, items []workset.Item) (*Summary, error) {
	summary := &Summary{Total: len(items)}
	if len(items) == 0 {
		return summary, nil
	}

	ok, err := r.confirmer.Confirm(fmt.Sprintf("Convert %d file(s) under %s?", len(items), root))
	if err != nil {
		return summary, fmt.Errorf("conversion gate: %w", err)
	}
	if !ok {
		r.logger.Info("conversion declined, nothing touched")
		summary.Declined = true
		return summary, nil
	}

	succeeded := r.convertAll(ctx, root, items, summary)
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}

	r.logger.Info("conversion phase finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
	)

	if len(succeeded) == 0 {
		return summary, nil
	}

	ok, err = r.confirmer.Confirm(fmt.Sprintf("Delete %d source file(s) that converted successfully?", len(succeeded)))
	if err != nil {
		return summary, fmt.Errorf("deletion gate: %w", err)
	}
	if !ok {
		r.logger.Info("deletion declined, sources kept")
		summary.DeleteDeclined = true
		return summary, nil
	}

	r.deleteAll(ctx, root, succeeded, summary)
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	return summary, nil
}

// convertAll runs the transcode loop and returns the items that succeeded,
// in work-set order.
func (r *Runner) convertAll(ctx context.Context, root string, items []workset.Item, summary *Summary) []workset.Item {
	var (
		mu        sync.Mutex
		succeeded = make([]workset.Item, 0, len(items))
		failures  []Failure
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for index, item := range items {
		index, item := index, item
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			rel := item.RelSource(root)
			r.logger.Info(fmt.Sprintf("[%d/%d] %s", index+1, len(items), rel),
				logging.String(logging.FieldSource, item.Source),
			)

			stage, err := r.convertOne(groupCtx, item)
			if err != nil {
				if groupCtx.Err() != nil && errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.Error("conversion failed",
					logging.String(logging.FieldSource, rel),
					logging.Error(err),
				)
				r.appendLedger(rel, ledgerOutcome(stage, err))
				r.recordEvent(item.Source, history.PhaseConversion, string(stage)+" failed", err.Error())
				mu.Lock()
				failures = append(failures, Failure{Item: item, Stage: stage, Err: err})
				mu.Unlock()
				return nil
			}

			r.appendLedger(rel, "converted")
			r.recordEvent(item.Source, history.PhaseConversion, "converted", "")
			mu.Lock()
			succeeded = append(succeeded, item)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	// Restore work-set order; the pool may finish items out of sequence.
	ordered := make([]workset.Item, 0, len(succeeded))
	for _, item := range items {
		for _, s := range succeeded {
			if s.Source == item.Source {
				ordered = append(ordered, item)
				break
			}
		}
	}

	summary.Succeeded = len(ordered)
	summary.Failed = len(failures)
	summary.ConvertFailures = failures
	return ordered
}

// convertOne moves a single item through directory creation, transcode, and
// output verification.
func (r *Runner) convertOne(ctx context.Context, item workset.Item) (Stage, error) {
	if dir := filepath.Dir(item.Target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return StageDirectory, fmt.Errorf("create target directory: %w", err)
		}
	}
	if err := r.transcoder.Transcode(ctx, item.Source, item.Target); err != nil {
		return StageTranscode, err
	}
	info, err := os.Stat(item.Target)
	if err != nil {
		return StageVerify, fmt.Errorf("missing output %q: %w", item.Target, err)
	}
	if info.Size() == 0 {
		return StageVerify, fmt.Errorf("empty output %q", item.Target)
	}
	return "", nil
}

// deleteAll removes exactly the sources that converted successfully.
func (r *Runner) deleteAll(ctx context.Context, root string, items []workset.Item, summary *Summary) {
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		rel := item.RelSource(root)
		err := os.Remove(item.Source)
		switch {
		case err == nil:
			summary.Deleted++
			r.appendLedger(rel, "deleted")
			r.recordEvent(item.Source, history.PhaseDeletion, "deleted", "")
		case errors.Is(err, fs.ErrNotExist):
			summary.DeleteMissing++
			r.logger.Warn("source vanished before deletion", logging.String(logging.FieldSource, rel))
			r.appendLedger(rel, "missing at delete time")
			r.recordEvent(item.Source, history.PhaseDeletion, "missing", "")
		default:
			summary.DeleteFailed++
			r.logger.Error("delete failed",
				logging.String(logging.FieldSource, rel),
				logging.Error(err),
			)
			r.appendLedger(rel, fmt.Sprintf("delete failed: %v", err))
			r.recordEvent(item.Source, history.PhaseDeletion, "delete failed", err.Error())
			summary.DeleteFailures = append(summary.DeleteFailures, Failure{Item: item, Stage: StageDelete, Err: err})
		}
	}
}

func ledgerOutcome(stage Stage, err error) string {
	switch stage {
	case StageDirectory:
		return fmt.Sprintf("directory create failed: %v", err)
	case StageVerify:
		return fmt.Sprintf("output verification failed: %v", err)
	default:
		return fmt.Sprintf("conversion failed: %v", err)
	}
}

func (r *Runner) appendLedger(filename, outcome string) {
	if err := r.ledger.Append(filename, outcome); err != nil {
		r.logger.Warn("ledger write failed",
			logging.String(logging.FieldSource, filename),
			logging.Error(err),
		)
	}
}

// recordEvent writes to the history store on a best-effort basis.
func (r *Runner) recordEvent(source, phase, outcome, detail string) {
	if r.history == nil {
		return
	}
	event := history.Event{
		RunID:      r.runID,
		Seq:        r.eventSeq.Add(1),
		SourcePath: source,
		Phase:      phase,
		Outcome:    outcome,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.history.RecordEvent(ctx, event); err != nil {
		r.logger.Warn("history write failed", logging.Error(err))
	}
}
