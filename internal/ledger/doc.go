// Package ledger keeps an SQLite history of pipeline runs and the step
// transitions inside them.
//
// The ledger is informational. Completion markers on disk remain the only
// authority for whether a step is skipped, so deleting the database never
// changes what the next run executes.
package ledger
