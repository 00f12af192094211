package pipeline

import "time"

// State is the lifecycle position of a stage or step within one run.
type State string

const (
	StatePending    State = "pending"
	StateOutOfRange State = "out_of_range"
	StateSkipped    State = "skipped"
	StateRunning    State = "running"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// StepResult records what happened to a single step.
type StepResult struct {
	Name     string
	Marker   string
	State    State
	Duration time.Duration
	Err      error
}

// StageResult records what happened to a stage and its steps.
type StageResult struct {
	Index int
	Name  string
	State State
	Steps []StepResult
}

// Report summarises one invocation of Runner.Run.
type Report struct {
	RunID    string
	Range    Range
	Started  time.Time
	Finished time.Time
	Stages   []StageResult
}

// Executed counts steps whose action was invoked, successfully or not.
func (r Report) Executed() int {
	n := 0
	for _, stage := range r.Stages {
		for _, step := range stage.Steps {
			if step.State == StateDone || step.State == StateFailed {
				n++
			}
		}
	}
	return n
}

// Stage returns the result for index.
func (r Report) Stage(index int) (StageResult, bool) {
	for _, stage := range r.Stages {
		if stage.Index == index {
			return stage, true
		}
	}
	return StageResult{}, false
}

// Failed returns the failing stage, if any.
func (r Report) Failed() (StageResult, bool) {
	for _, stage := range r.Stages {
		if stage.State == StateFailed {
			return stage, true
		}
	}
	return StageResult{}, false
}

// stageState folds step states into the stage state.
func stageState(steps []StepResult) State {
	if len(steps) == 0 {
		return StatePending
	}
	allSkipped := true
	for _, step := range steps {
		switch step.State {
		case StateFailed:
			return StateFailed
		case StateRunning, StatePending:
			return step.State
		case StateSkipped:
		default:
			allSkipped = false
		}
	}
	if allSkipped {
		return StateSkipped
	}
	return StateDone
}
