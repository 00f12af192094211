// Package preflight provides readiness checks for the external tools and
// filesystem layout the recipe depends on.
//
// These checks back the "ttsprep doctor" command. RunAll gathers the
// filesystem checks; CheckSystemDeps and CheckPythonDeps report binaries and
// Python packages separately so the CLI can render them as their own table.
// The runner performs its own per-step tool lookup, so a failed preflight
// never blocks a run.
package preflight
