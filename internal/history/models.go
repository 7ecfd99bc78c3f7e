package history

import "time"

// Run statuses recorded in the history store.
const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusDeclined    = "declined"
	StatusInterrupted = "interrupted"
)

// Event phases.
const (
	PhaseConversion = "conversion"
	PhaseDeletion   = "deletion"
)

// Run is one recorded flacpress invocation.
type Run struct {
	ID           int64
	RunID        string
	Root         string
	StartedAt    time.Time
	FinishedAt   time.Time
	Discovered   int
	Succeeded    int
	Failed       int
	Deleted      int
	DeleteFailed int
	Status       string
}

// Event is one per-item outcome within a run.
type Event struct {
	RunID      string
	Seq        int64
	SourcePath string
	Phase      string
	Outcome    string
	Detail     string
	CreatedAt  time.Time
}
