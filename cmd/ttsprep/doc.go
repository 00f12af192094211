// Package main hosts the ttsprep CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, then hands the
// recipe's stage table to the pipeline runner (run), inspects completion
// markers and the run ledger (status, history), resets markers (reset),
// exports the stage plan (stages), and checks the host (doctor).
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
