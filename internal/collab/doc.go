// Package collab runs the external programs a pipeline stage delegates to.
//
// Collaborator is the seam between stage logic and the outside world: the
// Exec implementation shells out with os/exec and streams output into the
// structured logger, while Recorder is an in-memory fake that records
// invocations and replays canned results so runner behaviour can be tested
// without lhotse or python installed.
package collab
