package ledger

import "time"

// RunStatus is the terminal or in-flight state of a recorded run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunSucceeded   RunStatus = "succeeded"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// Run is one invocation of the pipeline.
type Run struct {
	ID         string
	Stage      int
	StopStage  int
	DataDir    string
	Status     RunStatus
	ExitCode   int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StageEvent is one step transition recorded during a run.
type StageEvent struct {
	ID         int64
	RunID      string
	StageIndex int
	Stage      string
	Step       string
	Marker     string
	State      string
	Duration   time.Duration
	ExitCode   int
	Message    string
	OccurredAt time.Time
}
