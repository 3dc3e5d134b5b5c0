// Package testutil holds small helpers shared by the test suites.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a discard-backed logger so constructors keep their
// logger dependency without writing test output
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
