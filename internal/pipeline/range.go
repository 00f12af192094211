package pipeline

import (
	"fmt"

	"ttsprep/internal/services"
)

const (
	DefaultStart = 0
	DefaultStop  = 100
)

// Range is an inclusive stage selection.
type Range struct {
	Start int
	Stop  int
}

// DefaultRange covers every stage from 0 to 100.
func DefaultRange() Range {
	return Range{Start: DefaultStart, Stop: DefaultStop}
}

// Contains reports whether Start <= index <= Stop.
func (r Range) Contains(index int) bool {
	return r.Start <= index && index <= r.Stop
}

// Validate rejects an inverted range.
func (r Range) Validate() error {
	if r.Start > r.Stop {
		return services.Wrap(services.ErrConfiguration, "pipeline", "range",
			fmt.Sprintf("stage %d is after stop stage %d", r.Start, r.Stop), nil)
	}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.Stop)
}
