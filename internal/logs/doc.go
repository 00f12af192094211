// Package logs reads the run log written under the state directory.
//
// It returns the last N lines with bounded memory, reads complete lines
// appended after a byte offset, and follows the file until the context is
// cancelled. A Filter narrows output to one stage for both console and JSON
// log formats.
package logs
