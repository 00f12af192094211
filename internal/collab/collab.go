package collab

import (
	"context"
	"strings"
)

// Invocation describes one external program call.
type Invocation struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// String renders the invocation the way an operator would type it.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Name)
	parts = append(parts, inv.Args...)
	return strings.Join(parts, " ")
}

// Output captures what an external program produced.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Collaborator executes external programs on behalf of pipeline stages.
type Collaborator interface {
	Execute(ctx context.Context, inv Invocation) (Output, error)
}
