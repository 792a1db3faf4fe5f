package analyzer

import (
	"fmt"
	"strings"

	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/busdesc"
	"github.com/busperf/busperf/internal/config"
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
	"github.com/shopspring/decimal"
)

// Analyzer is the uniform entry point the CLI driver calls per bus,
// regardless of which concrete analyzer a descriptor resolves to.
type Analyzer interface {
	Run() (bususage.BusUsage, error)
}

type singleChannelRunner struct {
	name string
	a    *SingleChannelAnalyzer
}

func (r *singleChannelRunner) Run() (bususage.BusUsage, error) {
	u, err := r.a.Run()
	if err != nil {
		return bususage.BusUsage{}, err
	}
	return bususage.BusUsage{Kind: bususage.KindSingleChannel, SingleChannel: u}, nil
}

type axiReadRunner struct{ a *AXIReadAnalyzer }

func (r *axiReadRunner) Run() (bususage.BusUsage, error) {
	u, err := r.a.Run()
	if err != nil {
		return bususage.BusUsage{}, err
	}
	return bususage.BusUsage{Kind: bususage.KindMultiChannel, MultiChannel: u}, nil
}

type axiWriteRunner struct{ a *AXIWriteAnalyzer }

func (r *axiWriteRunner) Run() (bususage.BusUsage, error) {
	u, err := r.a.Run()
	if err != nil {
		return bususage.BusUsage{}, err
	}
	return bususage.BusUsage{Kind: bususage.KindMultiChannel, MultiChannel: u}, nil
}

// Params bundles the CLI-global defaults a descriptor falls back to when it
// doesn't override them (spec §6.1, §6.3).
type Params struct {
	DefaultMaxBurstDelay period.Cycles
	WindowLength         period.Cycles
	XRate, YRate         decimal.Decimal
}

// Build resolves a bus descriptor against a loaded trace and returns the
// Analyzer that implements its inferred Kind.
func Build(name string, bd *config.BusDescriptor, src trace.Source, d diag.Sink, p Params) (Analyzer, error) {
	kind := bd.Classify()
	for _, unused := range bd.UnusedKeys() {
		if d != nil {
			d.Warnf(name, 0, "config key %q is not used by the %v analyzer", unused, kind)
		}
	}

	clk, err := resolveRequired(src, bd.Scope, bd.Clock)
	if err != nil {
		return nil, fmt.Errorf("bus %q: %w", name, err)
	}
	rst, err := resolveRequired(src, bd.Scope, bd.Reset)
	if err != nil {
		return nil, fmt.Errorf("bus %q: %w", name, err)
	}

	cr := ClockReset{
		Clock:           clk,
		Reset:           rst,
		ResetActiveHigh: bd.ResetActiveHigh(),
		Intervals:       bd.Intervals,
		TimeTable:       src.TimeTable(),
	}

	maxBurstDelay := p.DefaultMaxBurstDelay
	if bd.MaxBurstDelay != nil {
		maxBurstDelay = *bd.MaxBurstDelay
	}

	switch kind {
	case config.KindCustom:
		return buildPlugin(bd.CustomAnalyzer, name)

	case config.KindReadyValid:
		ready, err := resolveRequired(src, bd.Scope, bd.Ready)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		valid, err := resolveRequired(src, bd.Scope, bd.Valid)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		classifier := busdesc.NewReadyValidBus(parsePath(bd.Scope, bd.Ready), parsePath(bd.Scope, bd.Valid))
		return &singleChannelRunner{name: name, a: &SingleChannelAnalyzer{
			Name: name, ClockReset: cr, Classifier: classifier,
			Signals: []trace.ChangeStream{ready, valid}, MaxBurstDelay: maxBurstDelay, Diag: d,
		}}, nil

	case config.KindCreditValid:
		credit, err := resolveRequired(src, bd.Scope, bd.Credit)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		valid, err := resolveRequired(src, bd.Scope, bd.Valid)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		classifier := busdesc.NewCreditValidBus(parsePath(bd.Scope, bd.Credit), parsePath(bd.Scope, bd.Valid))
		return &singleChannelRunner{name: name, a: &SingleChannelAnalyzer{
			Name: name, ClockReset: cr, Classifier: classifier,
			Signals: []trace.ChangeStream{credit, valid}, MaxBurstDelay: maxBurstDelay, Diag: d,
		}}, nil

	case config.KindAHB:
		htrans, err := resolveRequired(src, bd.Scope, bd.HTrans)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		hready, err := resolveRequired(src, bd.Scope, bd.HReady)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		classifier := busdesc.NewAHBBus(parsePath(bd.Scope, bd.HTrans), parsePath(bd.Scope, bd.HReady))
		return &singleChannelRunner{name: name, a: &SingleChannelAnalyzer{
			Name: name, ClockReset: cr, Classifier: classifier,
			Signals: []trace.ChangeStream{htrans, hready}, MaxBurstDelay: maxBurstDelay, Diag: d,
		}}, nil

	case config.KindAPB:
		psel, err := resolveRequired(src, bd.Scope, bd.PSel)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		penable, err := resolveRequired(src, bd.Scope, bd.PEnable)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		pready, err := resolveRequired(src, bd.Scope, bd.PReady)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		classifier := busdesc.NewAPBBus(parsePath(bd.Scope, bd.PSel), parsePath(bd.Scope, bd.PEnable), parsePath(bd.Scope, bd.PReady))
		return &singleChannelRunner{name: name, a: &SingleChannelAnalyzer{
			Name: name, ClockReset: cr, Classifier: classifier,
			Signals: []trace.ChangeStream{psel, penable, pready}, MaxBurstDelay: maxBurstDelay, Diag: d,
		}}, nil

	case config.KindAXIRead:
		ar, err := resolveAXIChannel(src, bd.Scope, bd.AR)
		if err != nil {
			return nil, fmt.Errorf("bus %q ar: %w", name, err)
		}
		r, err := resolveAXIChannel(src, bd.Scope, bd.R)
		if err != nil {
			return nil, fmt.Errorf("bus %q r: %w", name, err)
		}
		a := &AXIReadAnalyzer{
			Name: name, ClockReset: cr,
			AR: AXIChannel{Ready: ar.ready, Valid: ar.valid},
			R:  AXIChannel{Ready: r.ready, Valid: r.valid},
			WindowLength: p.WindowLength, XRate: p.XRate, YRate: p.YRate, Diag: d,
		}
		if r.resp != nil {
			a.Resp = r.resp
		}
		if bd.R.ID != "" && bd.AR.ID != "" && bd.R.Last != "" {
			arID, err := resolveRequired(src, bd.Scope, bd.AR.ID)
			if err != nil {
				return nil, fmt.Errorf("bus %q ar.id: %w", name, err)
			}
			rID, err := resolveRequired(src, bd.Scope, bd.R.ID)
			if err != nil {
				return nil, fmt.Errorf("bus %q r.id: %w", name, err)
			}
			last, err := resolveRequired(src, bd.Scope, bd.R.Last)
			if err != nil {
				return nil, fmt.Errorf("bus %q r.last: %w", name, err)
			}
			a.ID = arID
			a.RID = rID
			a.Last = last
		}
		return &axiReadRunner{a: a}, nil

	case config.KindAXIWrite:
		aw, err := resolveAXIChannel(src, bd.Scope, bd.AW)
		if err != nil {
			return nil, fmt.Errorf("bus %q aw: %w", name, err)
		}
		w, err := resolveAXIChannel(src, bd.Scope, bd.W)
		if err != nil {
			return nil, fmt.Errorf("bus %q w: %w", name, err)
		}
		b, err := resolveAXIChannel(src, bd.Scope, bd.B)
		if err != nil {
			return nil, fmt.Errorf("bus %q b: %w", name, err)
		}
		a := &AXIWriteAnalyzer{
			Name: name, ClockReset: cr,
			AW: AXIChannel{Ready: aw.ready, Valid: aw.valid},
			W:  AXIChannel{Ready: w.ready, Valid: w.valid},
			B:  AXIChannel{Ready: b.ready, Valid: b.valid},
			WindowLength: p.WindowLength, XRate: p.XRate, YRate: p.YRate, Diag: d,
		}
		if b.resp != nil {
			a.Resp = b.resp
		}
		if bd.AW.ID != "" && bd.W.Last != "" && bd.B.ID != "" {
			awID, err := resolveRequired(src, bd.Scope, bd.AW.ID)
			if err != nil {
				return nil, fmt.Errorf("bus %q aw.id: %w", name, err)
			}
			bID, err := resolveRequired(src, bd.Scope, bd.B.ID)
			if err != nil {
				return nil, fmt.Errorf("bus %q b.id: %w", name, err)
			}
			last, err := resolveRequired(src, bd.Scope, bd.W.Last)
			if err != nil {
				return nil, fmt.Errorf("bus %q w.last: %w", name, err)
			}
			a.ID = awID
			a.BID = bID
			a.Last = last
		}
		return &axiWriteRunner{a: a}, nil

	default:
		return nil, fmt.Errorf("bus %q: could not infer a protocol from the configured keys", name)
	}
}

type resolvedAXIChannel struct {
	ready, valid, resp trace.ChangeStream
}

func resolveAXIChannel(src trace.Source, scope []string, ch *config.AXIChannelDescriptor) (resolvedAXIChannel, error) {
	if ch == nil {
		return resolvedAXIChannel{}, fmt.Errorf("channel not configured")
	}
	ready, err := resolveRequired(src, scope, ch.Ready)
	if err != nil {
		return resolvedAXIChannel{}, err
	}
	valid, err := resolveRequired(src, scope, ch.Valid)
	if err != nil {
		return resolvedAXIChannel{}, err
	}
	var resp trace.ChangeStream
	if ch.Resp != "" {
		resp, err = resolveRequired(src, scope, ch.Resp)
		if err != nil {
			return resolvedAXIChannel{}, err
		}
	}
	return resolvedAXIChannel{ready: ready, valid: valid, resp: resp}, nil
}

func resolveRequired(src trace.Source, scope []string, path string) (trace.ChangeStream, error) {
	if path == "" {
		return nil, fmt.Errorf("required signal path not set")
	}
	return src.Resolve(parsePath(scope, path))
}

// parsePath splits a dotted signal path into scope/name and prepends the
// descriptor's scope prefix (spec §6.1: "scope: ... prefix prepended to
// every relative signal path in this descriptor").
func parsePath(descriptorScope []string, path string) trace.SignalPath {
	parts := strings.Split(path, ".")
	name := parts[len(parts)-1]
	scope := append(append([]string{}, descriptorScope...), parts[:len(parts)-1]...)
	return trace.SignalPath{Scope: scope, Name: name}
}
