// Command busperf analyzes a bus-transaction trace against a YAML bus
// description and reports burst/delay or AXI-correlation statistics per
// configured bus (spec.md §6, SPEC_FULL.md §6.3).
package main

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/busperf/busperf/internal/analyzer"
	"github.com/busperf/busperf/internal/bususage"
	"github.com/busperf/busperf/internal/config"
	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/envelope"
	"github.com/busperf/busperf/internal/metrics"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/textsummary"
	"github.com/busperf/busperf/internal/traceio"
	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

func main() {
	var maxBurstDelay = pflag.Int32P("max-burst-delay", "d", 0, "Default max cycles of idle time folded into a burst, for buses that don't set their own.")
	var windowLength = pflag.Int32P("window", "w", 1000, "AXI bandwidth-averaging window, in clock cycles.")
	var xRateStr = pflag.StringP("x-rate", "x", "1", "AXI bandwidth threshold: report the share of windows above this rate (transactions per clock cycle).")
	var yRateStr = pflag.StringP("y-rate", "y", "1", "AXI bandwidth threshold: report the share of windows below this rate (transactions per clock cycle).")
	var outPath = pflag.StringP("output", "o", "", "Write the gzip-compressed result envelope to this path. Empty disables it.")
	var verbose = pflag.CountP("verbose", "v", "Increase diagnostic verbosity. Repeatable.")
	var metricsAddr = pflag.String("metrics-addr", "", "Serve Prometheus metrics on this address for the duration of the run. Empty disables it.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "strftime format, checked for validity at startup. Warnings and the summary print raw time indices regardless.")
	var logLevel = pflag.String("log-level", "info", "Diagnostic log level: debug, info, warn, error.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "busperf - bus-transaction trace analyzer.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: busperf [options] <trace.json> <buses.yaml>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(1)
	}
	tracePath, configPath := pflag.Arg(0), pflag.Arg(1)

	if *timestampFormat != "" {
		if _, err := strftime.New(*timestampFormat); err != nil {
			fmt.Fprintf(os.Stderr, "busperf: invalid --timestamp-format: %v\n", err)
			os.Exit(1)
		}
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "busperf: invalid --log-level: %v\n", err)
		os.Exit(1)
	}
	if *verbose > 0 && level > log.DebugLevel {
		level = log.DebugLevel
	}
	diagSink := diag.NewStderrLogger(level)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "busperf: %v\n", err)
		os.Exit(1)
	}

	src, err := traceio.Load(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "busperf: %v\n", err)
		os.Exit(1)
	}

	xRate, err := decimal.NewFromString(*xRateStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "busperf: invalid --x-rate: %v\n", err)
		os.Exit(1)
	}
	yRate, err := decimal.NewFromString(*yRateStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "busperf: invalid --y-rate: %v\n", err)
		os.Exit(1)
	}

	params := analyzer.Params{
		DefaultMaxBurstDelay: period.Cycles(*maxBurstDelay),
		WindowLength:         period.Cycles(*windowLength),
		XRate:                xRate,
		YRate:                yRate,
	}

	exporter := metrics.NewExporter()
	if *metricsAddr != "" {
		if err := exporter.Register(prometheus.DefaultRegisterer); err != nil {
			fmt.Fprintf(os.Stderr, "busperf: registering metrics: %v\n", err)
			os.Exit(1)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				diagSink.Warnf("metrics", 0, "metrics server stopped: %v", err)
			}
		}()
	}

	type result struct {
		name  string
		usage bususage.BusUsage
		err   error
	}
	results := make([]result, 0, len(cfg.Interfaces))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, bd := range cfg.Interfaces {
		a, err := analyzer.Build(name, bd, src, diagSink, params)
		if err != nil {
			mu.Lock()
			results = append(results, result{name: name, err: err})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(name string, a analyzer.Analyzer) {
			defer wg.Done()
			usage, err := a.Run()
			mu.Lock()
			results = append(results, result{name: name, usage: usage, err: err})
			mu.Unlock()
		}(name, a)
	}
	wg.Wait()

	exitCode := 0
	buses := make([]envelope.BusResult, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "busperf: bus %q: %v\n", r.name, r.err)
			exitCode = 1
			continue
		}
		if err := textsummary.Write(os.Stdout, r.name, r.usage); err != nil {
			fmt.Fprintf(os.Stderr, "busperf: bus %q: %v\n", r.name, err)
			exitCode = 1
			continue
		}
		exporter.Observe(r.name, r.usage)
		buses = append(buses, envelope.BusResult{ID: xid.New(), Usage: r.usage})
	}

	if *outPath != "" && exitCode == 0 {
		hash, err := envelope.HashTrace(tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "busperf: hashing trace: %v\n", err)
			os.Exit(1)
		}
		env := envelope.New(tracePath, hash, buses)
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "busperf: %v\n", err)
			os.Exit(1)
		}
		if _, err := env.WriteTo(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "busperf: writing envelope: %v\n", err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "busperf: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(exitCode)
}
