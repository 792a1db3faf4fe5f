// Package envelope defines the persisted result format (spec §6.2): a
// gzip-compressed, hand-written easyjson payload bundling the trace's
// identity with every analyzed bus's usage statistics.
package envelope

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/trace"
	"github.com/google/uuid"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
	"github.com/rs/xid"
)

// BusResult is one analyzed bus's contribution to an Envelope.
type BusResult struct {
	ID      xid.ID
	Usage   bususage.BusUsage
	Signals []trace.SignalPath
}

// Envelope is the persisted analysis result (spec §6.2), identified by a
// RunID so results from separate invocations can be told apart once
// compared across runs (spec §9 supplement).
type Envelope struct {
	RunID     uuid.UUID
	TracePath string
	TraceHash string
	Buses     []BusResult
}

// HashTrace computes the SHA-256 hex digest of a waveform file, for
// TraceHash.
func HashTrace(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashing trace %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing trace %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// New builds an Envelope with a freshly generated RunID.
func New(tracePath, traceHash string, buses []BusResult) Envelope {
	return Envelope{
		RunID:     uuid.New(),
		TracePath: tracePath,
		TraceHash: traceHash,
		Buses:     buses,
	}
}

// WriteTo gzip-compresses the envelope's JSON encoding to w.
func (e Envelope) WriteTo(w io.Writer) (int64, error) {
	var jw jwriter.Writer
	e.MarshalEasyJSON(&jw)
	if jw.Error != nil {
		return 0, fmt.Errorf("encoding envelope: %w", jw.Error)
	}

	gz := gzip.NewWriter(w)
	n, err := jw.DumpTo(gz)
	if err != nil {
		gz.Close()
		return int64(n), fmt.Errorf("compressing envelope: %w", err)
	}
	if err := gz.Close(); err != nil {
		return int64(n), fmt.Errorf("compressing envelope: %w", err)
	}
	return int64(n), nil
}

// Read decompresses and decodes an Envelope previously written by WriteTo.
func Read(r io.Reader) (Envelope, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return Envelope{}, fmt.Errorf("decompressing envelope: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return Envelope{}, fmt.Errorf("decompressing envelope: %w", err)
	}

	var e Envelope
	l := jlexer.Lexer{Data: data}
	e.UnmarshalEasyJSON(&l)
	if err := l.Error(); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return e, nil
}

// VerifyHash re-hashes the trace file at path and reports whether it
// still matches e.TraceHash (spec §6.1: "consumers may re-hash and warn on
// mismatch").
func (e Envelope) VerifyHash(path string) (bool, error) {
	h, err := HashTrace(path)
	if err != nil {
		return false, err
	}
	return h == e.TraceHash, nil
}

// MarshalEasyJSON implements easyjson.Marshaler by hand, bridging to
// encoding/json for the BusUsage payload via jwriter.Writer.Raw since
// BusUsage has no hot loop of its own worth hand-rolling (spec §6.2).
func (e Envelope) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')

	w.RawString(`"run_id":`)
	w.String(e.RunID.String())

	w.RawString(`,"trace_path":`)
	w.String(e.TracePath)

	w.RawString(`,"trace_hash":`)
	w.String(e.TraceHash)

	w.RawString(`,"buses":[`)
	for i, b := range e.Buses {
		if i > 0 {
			w.RawByte(',')
		}
		b.marshalEasyJSON(w)
	}
	w.RawByte(']')

	w.RawByte('}')
}

func (b BusResult) marshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')

	w.RawString(`"id":`)
	w.String(b.ID.String())

	w.RawString(`,"usage":`)
	w.Raw(json.Marshal(b.Usage))

	w.RawString(`,"signals":`)
	w.Raw(json.Marshal(b.Signals))

	w.RawByte('}')
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler by hand, reading the
// BusUsage payload back via jlexer.Lexer.Raw + encoding/json.
func (e *Envelope) UnmarshalEasyJSON(l *jlexer.Lexer) {
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "run_id":
			id, err := uuid.Parse(l.String())
			if err != nil {
				l.AddError(err)
			}
			e.RunID = id
		case "trace_path":
			e.TracePath = l.String()
		case "trace_hash":
			e.TraceHash = l.String()
		case "buses":
			l.Delim('[')
			for !l.IsDelim(']') {
				var b BusResult
				b.unmarshalEasyJSON(l)
				e.Buses = append(e.Buses, b)
				l.WantComma()
			}
			l.Delim(']')
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

func (b *BusResult) unmarshalEasyJSON(l *jlexer.Lexer) {
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "id":
			id, err := xid.FromString(l.String())
			if err != nil {
				l.AddError(err)
			}
			b.ID = id
		case "usage":
			raw := l.Raw()
			if err := json.Unmarshal(raw, &b.Usage); err != nil {
				l.AddError(err)
			}
		case "signals":
			raw := l.Raw()
			if err := json.Unmarshal(raw, &b.Signals); err != nil {
				l.AddError(err)
			}
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}
