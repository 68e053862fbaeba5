// Package logging provides structured logging for the non-fatal error
// kinds the pipeline swallows: per-file I/O failures and cache
// persistence failures. Neither kind fails a scan; this package is how
// an operator watching logs can still see degraded coverage.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// Field is a type alias for zap.Field, re-exported so callers never
// need to import zap directly.
type Field = zap.Field

// Common field constructors.
var (
	String = zap.String
	Int    = zap.Int
	Err    = zap.Error
)

// Logger wraps zap.Logger with the small set of methods this module
// needs.
type Logger struct {
	z *zap.Logger
}

// New creates a Logger. verbose selects debug-level console output;
// otherwise only info-and-above is printed.
func New(verbose bool) *Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than fail the caller over
		// a logging misconfiguration.
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Nop returns a Logger that discards everything, for callers (tests,
// library embedders) that don't want log output.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

// Warn logs a per-file I/O failure (error kind 2 in the error design).
func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Warn(msg, fields...)
}

// Error logs a persistence failure (error kind 3).
func (l *Logger) Error(msg string, fields ...Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Error(msg, fields...)
}

// Sync flushes any buffered log entries. Safe to call on a nil Logger.
func (l *Logger) Sync() {
	if l == nil || l.z == nil {
		return
	}
	_ = l.z.Sync()
}

// DrainErrors consumes err from ch and logs each as a warning until ch
// is closed. Intended to run in its own goroutine, fed by the channel
// passed as errSink to scanner.Scan / pipeline.StartScan.
func DrainErrors(l *Logger, ch <-chan error) {
	for err := range ch {
		l.Warn("non-fatal scan error", Err(err))
	}
	_ = os.Stderr // keep zap's default stderr wiring obvious at a glance
}
