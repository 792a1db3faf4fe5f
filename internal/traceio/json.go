// Package traceio loads a trace.Source from disk. Real waveform formats
// (VCD, FST, ...) are explicitly out of core scope (spec §1: "assumed to
// provide a random-access signal-change reader and a time-index table");
// this package is the minimal stand-in that lets cmd/busperf be smoke-
// tested end to end against a small JSON fixture instead of a real
// simulator dump.
package traceio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/busperf/busperf/internal/trace"
)

type jsonChange struct {
	Time TimeIndexJSON `json:"time"`
	Bits []int         `json:"bits"`
}

// TimeIndexJSON aliases trace.TimeIndex for field documentation purposes.
type TimeIndexJSON = trace.TimeIndex

type jsonSignal struct {
	Scope   []string     `json:"scope"`
	Name    string       `json:"name"`
	Changes []jsonChange `json:"changes"`
}

type jsonTrace struct {
	TimeTable []uint64     `json:"time_table"`
	Signals   []jsonSignal `json:"signals"`
}

// Load reads a JSON trace fixture from path and builds an in-memory
// trace.Source from it.
func Load(path string) (*trace.MemTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace %q: %w", path, err)
	}

	var doc jsonTrace
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing trace %q: %w", path, err)
	}

	mt := trace.NewMemTrace(doc.TimeTable)
	for _, s := range doc.Signals {
		changes := make(trace.MemChangeStream, len(s.Changes))
		for i, c := range s.Changes {
			changes[i] = trace.Change{Time: c.Time, Value: trace.Bits(c.Bits...)}
		}
		mt.Put(trace.SignalPath{Scope: s.Scope, Name: s.Name}, changes)
	}
	return mt, nil
}
