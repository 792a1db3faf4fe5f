// Package diag is the diagnostic warning sink threaded through every
// analyzer. Per spec §7, protocol anomalies (credit underrun, disallowed AHB
// transitions, unknown cycles, orphaned AXI responses, unfinished
// transactions) are warnings attached to the run, never fatal errors and
// never folded into BusUsage — this is where they go instead.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Sink collects diagnostic warnings during analysis. The CLI driver shares
// one Sink across every concurrently running bus analysis, so a Sink used
// there must be safe for concurrent use; Logger is, since the
// charmbracelet/log logger it wraps serializes its writes.
type Sink interface {
	Warnf(bus string, time uint32, format string, args ...any)
	Errorf(bus string, time uint32, format string, args ...any)
}

// Logger is a Sink backed by charmbracelet/log, the structured console
// logger the rest of this engine's ambient stack uses.
type Logger struct {
	log *log.Logger
}

// NewLogger builds a Logger writing to w at the given level.
func NewLogger(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return &Logger{log: l}
}

// NewStderrLogger is the default sink for a CLI run.
func NewStderrLogger(level log.Level) *Logger {
	return NewLogger(os.Stderr, level)
}

// Warnf records a recoverable protocol anomaly.
func (l *Logger) Warnf(bus string, time uint32, format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...), "bus", bus, "time_index", time)
}

// Errorf records a more severe, still-non-fatal anomaly. The analyzers in
// this module report every anomaly, including an AXI response with no
// matching in-flight command, through Warnf.
func (l *Logger) Errorf(bus string, time uint32, format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...), "bus", bus, "time_index", time)
}

// NopSink discards every diagnostic, for tests that don't care about
// warnings.
type NopSink struct{}

func (NopSink) Warnf(string, uint32, string, ...any)  {}
func (NopSink) Errorf(string, uint32, string, ...any) {}
