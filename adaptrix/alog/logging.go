// Package alog is the logging facility shared by the Adaptrix
// preprocessor and runtime: printf-style helpers over log/slog, with
// every record tagged by the component that produced it and, on the
// runtime side, the frame stage or build level it came from.
package alog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger emits printf-style messages as structured slog records. A
// base Logger carries its component name; loggers derived via
// WithStage additionally carry the pass or level that produced the
// record, so a dropped frame's log line names the exact stage that
// failed without the message text having to.
type Logger struct {
	s *slog.Logger
}

// New returns a Logger for one component (e.g. "adaptrixc", "frame"),
// writing text records to stderr. debug enables Debugf output.
func New(component string, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{s: slog.New(h).With("component", component)}
}

// Nop returns a Logger that discards everything, so callers that don't
// want logging never have to nil-check.
func Nop() *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithStage returns a derived Logger whose records carry the named
// stage (a frame state, a hierarchy build level). The receiver is
// unchanged.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{s: l.s.With("stage", stage)}
}

func (l *Logger) Debugf(format string, args ...any) { l.s.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.s.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.s.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.s.Error(fmt.Sprintf(format, args...)) }
