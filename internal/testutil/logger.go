package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output.
// Every service constructor takes a logger, so tests use this to stay quiet.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
