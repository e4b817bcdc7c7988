// Package metrics holds the run counters. They are registered with the
// default prometheus registry and can be written to a node_exporter
// textfile when the run ends.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	configLinesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uptimeplot_config_lines_skipped_total",
			Help: "Config lines skipped because they could not be parsed.",
		},
		[]string{"section"},
	)

	samplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uptimeplot_samples_total",
			Help: "Horizontal positions computed, Sun included.",
		},
	)

	figuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uptimeplot_figures_total",
			Help: "Files written per kind.",
		},
		[]string{"kind"},
	)

	targetsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uptimeplot_targets_dropped_total",
			Help: "Targets left off a figure because it was full.",
		},
	)

	runDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "uptimeplot_run_duration_seconds",
			Help: "Wall time of the last run.",
		},
	)
)

func init() {
	prometheus.MustRegister(configLinesSkipped)
	prometheus.MustRegister(samplesTotal)
	prometheus.MustRegister(figuresTotal)
	prometheus.MustRegister(targetsDropped)
	prometheus.MustRegister(runDurationSeconds)
}

// ConfigLineSkipped counts one unparseable line in section.
func ConfigLineSkipped(section string) {
	configLinesSkipped.WithLabelValues(section).Inc()
}

// SamplesComputed adds n computed positions.
func SamplesComputed(n int) {
	samplesTotal.Add(float64(n))
}

// FileWritten counts one output file of the given kind (azel, polar, LST,
// data, summary).
func FileWritten(kind string) {
	figuresTotal.WithLabelValues(kind).Inc()
}

// TargetsDropped adds n targets left off a full figure.
func TargetsDropped(n int) {
	targetsDropped.Add(float64(n))
}

// ObserveRun records the duration of a finished run.
func ObserveRun(d time.Duration) {
	runDurationSeconds.Set(d.Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
