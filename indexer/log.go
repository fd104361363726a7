package indexer

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package logger. Any calls to this function must be
// made before a client is created and used (it is not concurrency safe).
func UseLogger(logger slog.Logger) {
	log = logger
}
