// Package pipeline sequences numbered, resumable stages.
//
// A Stage is an ordered list of Steps. The Runner walks stages in index
// order, executes only those whose index falls inside the inclusive Range,
// and gates every step on its completion marker: a present marker means the
// step is skipped, an absent one means the step runs and, on success, the
// marker is written. The first failure halts the whole run; earlier stages
// are neither retried nor rolled back.
//
// Execution is strictly sequential. Cancelling the context stops the run
// before the next step and leaves the interrupted step without a marker, so
// the following run retries it from scratch.
package pipeline
