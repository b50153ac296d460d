// Package metrics records the outcome of a batch run as Prometheus gauges
// and writes them to a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/leadscore/internal/priority"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "leadscore"
	subsystem = "batch"
)

// Recorder collects the metrics of one run in its own registry.
type Recorder struct {
	reg *prometheus.Registry

	stageSeconds *prometheus.GaugeVec
	records      prometheus.Gauge
	leads        *prometheus.GaugeVec
	success      prometheus.Gauge
	lastRun      prometheus.Gauge
	failures     *prometheus.CounterVec
}

// NewRecorder returns a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in the last run.",
		}, []string{"stage"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records",
			Help:      "Number of leads scored in the last run.",
		}),
		leads: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "priority_leads",
			Help:      "Number of leads per priority level in the last run.",
		}, []string{"level"}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_success",
			Help:      "1 if the last run succeeded, 0 otherwise.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "Failed runs by stage and error kind.",
		}, []string{"stage", "kind"}),
	}
	r.reg.MustRegister(r.stageSeconds, r.records, r.leads, r.success, r.lastRun, r.failures)
	return r
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

// Succeeded records a finished run and its tier counts.
func (r *Recorder) Succeeded(at time.Time, dist priority.Distribution) {
	r.records.Set(float64(dist.Total))
	for _, l := range priority.AllLevels() {
		r.leads.WithLabelValues(string(l)).Set(float64(dist.Count(l)))
	}
	r.success.Set(1)
	r.lastRun.Set(float64(at.Unix()))
}

// Failed records a run that stopped at stage with an error of kind.
func (r *Recorder) Failed(at time.Time, stage, kind string) {
	r.success.Set(0)
	r.lastRun.Set(float64(at.Unix()))
	r.failures.WithLabelValues(stage, kind).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// WriteTextfile writes the metrics to path in the text exposition format,
// creating the parent directory if needed. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
