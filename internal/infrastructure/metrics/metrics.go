package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/ports"
)

const namespace = "fyp"

type Registry struct {
	reg *prometheus.Registry

	Rows        *prometheus.CounterVec
	Batches     *prometheus.CounterVec
	Resolutions *prometheus.CounterVec
	Pending     prometheus.Gauge
}

var _ ports.IngestObserver = (*Registry)(nil)

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rows_total",
		Help:      "Ingested rows by reconciliation outcome.",
	}, []string{"outcome"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_batches_total",
		Help:      "Ingested batches by result.",
	}, []string{"result"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_resolutions_total",
		Help:      "Pending records resolved by action.",
	}, []string{"action"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_records",
		Help:      "Records awaiting approval as of the last publish.",
	})

	r.MustRegister(
		rows, batches, resolutions, pending,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:         r,
		Rows:        rows,
		Batches:     batches,
		Resolutions: resolutions,
		Pending:     pending,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) ObserveRow(outcome inspection.Outcome) {
	r.Rows.WithLabelValues(labelValue(string(outcome))).Inc()
}

func (r *Registry) ObserveBatch(result string) {
	r.Batches.WithLabelValues(labelValue(result)).Inc()
}

func (r *Registry) ObserveResolution(action inspection.ApprovalAction) {
	r.Resolutions.WithLabelValues(labelValue(string(action))).Inc()
}

func (r *Registry) ObservePendingCount(count int64) {
	r.Pending.Set(float64(count))
}

func labelValue(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "unknown"
	}
	return value
}
