package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"ttsprep/internal/logging"
	"ttsprep/internal/services"
)

// Event is emitted for every step transition so callers can persist history.
type Event struct {
	RunID      string
	StageIndex int
	Stage      string
	Step       string
	Marker     string
	State      State
	Duration   time.Duration
	ExitCode   int
	Message    string
	OccurredAt time.Time
}

// Observer receives step transitions. Observer failures never affect the run.
type Observer interface {
	RecordEvent(ctx context.Context, event Event) error
}

// Runner executes stages against a shared Context.
type Runner struct {
	pc       *Context
	logger   *slog.Logger
	observer Observer
	lookPath func(string) (string, error)
	newID    func() string
	now      func() time.Time
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithObserver attaches an event sink such as the run ledger.
func WithObserver(observer Observer) RunnerOption {
	return func(r *Runner) {
		r.observer = observer
	}
}

// WithToolLookup overrides PATH resolution for declared step tools.
func WithToolLookup(fn func(string) (string, error)) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.lookPath = fn
		}
	}
}

// WithRunID fixes the identifier instead of generating one.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		id = strings.TrimSpace(id)
		if id != "" {
			r.newID = func() string { return id }
		}
	}
}

// NewRunner constructs a runner bound to pc.
func NewRunner(pc *Context, opts ...RunnerOption) *Runner {
	logger := pc.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		pc:       pc,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		lookPath: exec.LookPath,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every in-range stage in index order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, stages []Stage, rng Range) (Report, error) {
	report := Report{RunID: r.newID(), Range: rng, Started: r.now()}
	if err := rng.Validate(); err != nil {
		report.Finished = r.now()
		return report, err
	}
	if err := Validate(stages); err != nil {
		report.Finished = r.now()
		return report, err
	}
	if r.pc == nil || r.pc.Markers == nil {
		report.Finished = r.now()
		return report, services.Wrap(services.ErrConfiguration, "pipeline", "run", "marker store is required", nil)
	}

	ctx = services.WithRunID(ctx, report.RunID)
	runLogger := logging.WithContext(ctx, r.logger)
	runLogger.Info("pipeline run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("stage", rng.Start),
		logging.Int("stop_stage", rng.Stop),
	)

	ordered := Sorted(stages)
	report.Stages = make([]StageResult, len(ordered))
	for i, stage := range ordered {
		report.Stages[i] = newStageResult(stage)
	}

	var runErr error
	for i, stage := range ordered {
		result := &report.Stages[i]
		if !rng.Contains(stage.Index) {
			result.State = StateOutOfRange
			for j := range result.Steps {
				result.Steps[j].State = StateOutOfRange
			}
			continue
		}
		if err := r.runStage(ctx, stage, result); err != nil {
			runErr = err
			break
		}
	}

	report.Finished = r.now()
	if runErr != nil {
		runLogger.Error("pipeline run failed",
			logging.String(logging.FieldEventType, "run_failure"),
			logging.Int("exit_code", services.ExitCode(runErr)),
			logging.Error(runErr),
		)
		return report, runErr
	}
	runLogger.Info("pipeline run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("steps_executed", report.Executed()),
		logging.Duration("duration", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage, result *StageResult) error {
	stageCtx := services.WithStage(ctx, stage.Name)
	stageLogger := logging.WithContext(stageCtx, r.logger).With(logging.Int("stage_index", stage.Index))

	for j, step := range stage.Steps {
		stepResult := &result.Steps[j]
		if err := ctx.Err(); err != nil {
			result.State = stageState(result.Steps)
			return fmt.Errorf("stage %d (%s) interrupted: %w", stage.Index, stage.Name, err)
		}

		done, err := r.markerPresent(step.Marker)
		if err != nil {
			stepResult.State = StateFailed
			stepResult.Err = err
			result.State = StateFailed
			r.emit(stageCtx, stage, *stepResult, err)
			return fmt.Errorf("stage %d (%s): %w", stage.Index, stage.Name, err)
		}
		if done {
			stepResult.State = StateSkipped
			stageLogger.Info("marker present; skipping",
				logging.String(logging.FieldEventType, "stage_skip"),
				logging.String(logging.FieldStep, stepResult.Name),
				logging.String("marker", step.Marker),
			)
			r.emit(stageCtx, stage, *stepResult, nil)
			continue
		}

		stepResult.State = StateRunning
		if result.State != StateRunning {
			stageLogger.Info("stage started",
				logging.String(logging.FieldEventType, "stage_start"),
				logging.String("description", stage.Description),
			)
		}
		result.State = StateRunning

		started := r.now()
		err = r.runStep(stageCtx, stepResult.Name, step)
		stepResult.Duration = r.now().Sub(started)
		if err == nil && step.Marker != "" {
			err = r.pc.Markers.Mark(step.Marker)
		}
		if err != nil {
			stepResult.State = StateFailed
			stepResult.Err = err
			result.State = StateFailed
			stageLogger.Error("stage failed",
				logging.String(logging.FieldEventType, "stage_failure"),
				logging.String(logging.FieldStep, stepResult.Name),
				logging.Int("exit_code", services.ExitCode(err)),
				logging.Error(err),
			)
			r.emit(stageCtx, stage, *stepResult, err)
			return fmt.Errorf("stage %d (%s) step %s: %w", stage.Index, stage.Name, stepResult.Name, err)
		}
		stepResult.State = StateDone
		stageLogger.Info("step completed",
			logging.String(logging.FieldEventType, "step_complete"),
			logging.String(logging.FieldStep, stepResult.Name),
			logging.String("marker", step.Marker),
			logging.Duration("duration", stepResult.Duration),
		)
		r.emit(stageCtx, stage, *stepResult, nil)
	}

	result.State = stageState(result.Steps)
	if result.State == StateDone {
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
		)
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, name string, step Step) error {
	stepCtx := services.WithStep(ctx, name)
	for _, tool := range step.Tools {
		if _, err := r.lookPath(tool); err != nil {
			return services.Wrap(services.ErrToolNotFound, "", name, fmt.Sprintf("%q not found on PATH", tool), err)
		}
	}
	for _, input := range step.Inputs {
		if _, err := os.Stat(input); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return services.Wrap(services.ErrMissingInput, "", name, fmt.Sprintf("required input %s does not exist", input), nil)
			}
			return services.Wrap(services.ErrMissingInput, "", name, fmt.Sprintf("inspect input %s", input), err)
		}
	}
	return step.Run(stepCtx, r.pc)
}

func (r *Runner) markerPresent(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, nil
	}
	return r.pc.Markers.Exists(path)
}

func (r *Runner) emit(ctx context.Context, stage Stage, step StepResult, stepErr error) {
	if r.observer == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	event := Event{
		RunID:      runID,
		StageIndex: stage.Index,
		Stage:      stage.Name,
		Step:       step.Name,
		Marker:     step.Marker,
		State:      step.State,
		Duration:   step.Duration,
		OccurredAt: r.now().UTC(),
	}
	if stepErr != nil {
		event.ExitCode = services.ExitCode(stepErr)
		event.Message = stepErr.Error()
	}
	// Detach from cancellation so an interrupted step still gets its failure recorded.
	if err := r.observer.RecordEvent(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Warn("failed to record stage event",
			logging.String(logging.FieldEventType, "ledger_write_failed"),
			logging.Error(err),
		)
	}
}

func newStageResult(stage Stage) StageResult {
	result := StageResult{Index: stage.Index, Name: stage.Name, State: StatePending}
	result.Steps = make([]StepResult, len(stage.Steps))
	for i, step := range stage.Steps {
		name := step.Name
		if name == "" {
			name = stage.Name
		}
		result.Steps[i] = StepResult{Name: name, Marker: step.Marker, State: StatePending}
	}
	return result
}
