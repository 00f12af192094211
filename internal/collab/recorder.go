package collab

import (
	"context"
	"strings"
	"sync"
)

// Response is a canned result returned by Recorder.
type Response struct {
	Output Output
	Err    error
	// Effect runs before the response is returned, letting tests create the
	// files a real tool would have written.
	Effect func(Invocation) error
}

// Recorder is an in-memory Collaborator that records every invocation and
// replays canned responses. Responses are matched on the longest registered
// prefix of "name arg0 arg1 ..."; unmatched invocations succeed with empty output.
type Recorder struct {
	mu        sync.Mutex
	calls     []Invocation
	responses map[string]Response
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{responses: make(map[string]Response)}
}

// On registers a response for invocations whose command line starts with prefix.
func (r *Recorder) On(prefix string, resp Response) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[strings.TrimSpace(prefix)] = resp
	return r
}

// Execute records inv and returns the matching canned response.
func (r *Recorder) Execute(ctx context.Context, inv Invocation) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	r.mu.Lock()
	r.calls = append(r.calls, cloneInvocation(inv))
	resp, ok := r.match(inv.String())
	r.mu.Unlock()
	if !ok {
		return Output{}, nil
	}
	if resp.Effect != nil {
		if err := resp.Effect(inv); err != nil {
			return resp.Output, err
		}
	}
	return resp.Output, resp.Err
}

// Calls returns a snapshot of the recorded invocations.
func (r *Recorder) Calls() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Invocation, len(r.calls))
	copy(out, r.calls)
	return out
}

// CommandLines returns the recorded invocations rendered as strings.
func (r *Recorder) CommandLines() []string {
	calls := r.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Reset forgets recorded invocations but keeps registered responses.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) match(line string) (Response, bool) {
	best := ""
	found := false
	for prefix := range r.responses {
		if prefix != line && !strings.HasPrefix(line, prefix+" ") {
			continue
		}
		if !found || len(prefix) > len(best) {
			best = prefix
			found = true
		}
	}
	return r.responses[best], found
}

func cloneInvocation(inv Invocation) Invocation {
	inv.Args = append([]string(nil), inv.Args...)
	inv.Env = append([]string(nil), inv.Env...)
	return inv
}
