// Package metrics republishes the headline numbers of a bususage.BusUsage
// as Prometheus gauges for the duration of a run (SPEC_FULL.md §2, §6.3's
// --metrics-addr flag), grounded on
// runZeroInc-sockstats/cmd/exporter_example1/main.go's
// prometheus.MustRegister + promhttp.Handler wiring.
package metrics

import (
	"net/http"

	"github.com/busperf/busperf/internal/bususage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter holds one gauge vector per headline statistic, labeled by bus
// name, and republishes every analyzed bus's usage on demand.
type Exporter struct {
	cycles      *prometheus.GaugeVec
	errorRate   *prometheus.GaugeVec
	bandwidth   *prometheus.GaugeVec
	currentKind *prometheus.GaugeVec
}

// NewExporter builds an Exporter with a fresh, unregistered set of gauge
// vectors.
func NewExporter() *Exporter {
	return &Exporter{
		cycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "busperf",
			Name:      "cycles_total",
			Help:      "Number of sampled clock cycles by classification.",
		}, []string{"bus", "cycle_type"}),
		errorRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "busperf",
			Name:      "error_rate",
			Help:      "Fraction of AXI transactions that resulted in error, per bus.",
		}, []string{"bus"}),
		bandwidth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "busperf",
			Name:      "averaged_bandwidth",
			Help:      "Averaged bandwidth in transactions per clock cycle, per bus.",
		}, []string{"bus"}),
		currentKind: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "busperf",
			Name:      "current_state",
			Help:      "Set to 1 under the single-channel bus's current burst/delay state label; other state labels are not exported.",
		}, []string{"bus", "state"}),
	}
}

// Register adds every gauge vector to reg.
func (e *Exporter) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{e.cycles, e.errorRate, e.bandwidth, e.currentKind} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe republishes one bus's usage.
func (e *Exporter) Observe(name string, usage bususage.BusUsage) {
	switch usage.Kind {
	case bususage.KindSingleChannel:
		u := usage.SingleChannel
		e.cycles.WithLabelValues(name, "busy").Set(float64(u.Busy))
		e.cycles.WithLabelValues(name, "backpressure").Set(float64(u.Backpressure))
		e.cycles.WithLabelValues(name, "no_data").Set(float64(u.NoData))
		e.cycles.WithLabelValues(name, "no_transaction").Set(float64(u.NoTransaction))
		e.cycles.WithLabelValues(name, "free").Set(float64(u.Free))
		e.cycles.WithLabelValues(name, "reset").Set(float64(u.Reset))
		e.currentKind.WithLabelValues(name, u.Current().String()).Set(1)
	case bususage.KindMultiChannel:
		u := usage.MultiChannel
		rate, _ := u.ErrorRate.Float64()
		e.errorRate.WithLabelValues(name).Set(rate)
		bw, _ := u.AveragedBandwidth.Float64()
		e.bandwidth.WithLabelValues(name).Set(bw)
	}
}

// Handler serves Prometheus's standard /metrics exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.Handler()
}
