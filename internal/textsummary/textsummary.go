// Package textsummary writes a minimal plain-text rendering of a bus's
// analysis result, deliberately thin: CSV/Markdown/GUI rendering is out of
// scope (spec §1 Non-goals), and this package exists only to smoke-test
// the CLI end to end (SPEC_FULL.md §6.3).
package textsummary

import (
	"fmt"
	"io"

	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/stats"
)

// Write renders name's usage as a few lines of plain text to w.
func Write(w io.Writer, name string, usage bususage.BusUsage) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", name); err != nil {
		return err
	}

	switch usage.Kind {
	case bususage.KindSingleChannel:
		return writeSingleChannel(w, usage.SingleChannel)
	case bususage.KindMultiChannel:
		return writeMultiChannel(w, usage.MultiChannel)
	default:
		_, err := fmt.Fprintln(w, "(no data)")
		return err
	}
}

func writeSingleChannel(w io.Writer, u *bususage.SingleChannelBusUsage) error {
	_, err := fmt.Fprintf(w, "busy=%d backpressure=%d no_data=%d no_transaction=%d free=%d reset=%d cycles=%d current=%s\n",
		u.Busy, u.Backpressure, u.NoData, u.NoTransaction, u.Free, u.Reset, u.TotalCycles(), u.Current())
	if err != nil {
		return err
	}
	for _, s := range u.Statistics(nil) {
		if err := writeStatLine(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeMultiChannel(w io.Writer, u *bususage.MultiChannelBusUsage) error {
	_, err := fmt.Fprintf(w, "correct=%d errors=%d error_rate=%s averaged_bandwidth=%s\n",
		u.CorrectNum, len(u.Errors), u.ErrorRate.StringFixed(4), u.AveragedBandwidth.StringFixed(4))
	if err != nil {
		return err
	}
	for _, s := range u.Statistics(nil) {
		if err := writeStatLine(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeStatLine(w io.Writer, s stats.Statistic) error {
	value := "(no data)"
	switch s.Kind {
	case stats.KindBucket:
		if s.Bucket != nil {
			value = s.Bucket.Display()
		}
	case stats.KindPercentage:
		if s.Percentage != nil {
			value = s.Percentage.Display()
		}
	case stats.KindTimeline:
		if s.Timeline != nil {
			value = s.Timeline.Display
		}
	}
	_, err := fmt.Fprintf(w, "  %s: %s\n", s.Name, value)
	return err
}
