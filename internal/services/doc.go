// Package services defines shared utilities consumed by the pipeline runner
// and the external collaborators it drives.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and step names
//     for logging and the run ledger.
//   - Structured error markers plus the Wrap helper that classify failures
//     (missing tool, non-zero exit, missing input) without losing detail.
//   - ExitCode, which turns any run error into the process exit status so the
//     CLI keeps fail-fast shell semantics.
//
// Use these helpers when wiring new stages so operational behaviour stays
// uniform across the recipe.
package services
