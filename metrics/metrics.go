// Package metrics reports download outcomes to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/adamwoolhether/imagedl/download"
)

const outcomeSuccess = "success"

// Recorder implements [download.Recorder] over Prometheus collectors.
type Recorder struct {
	downloads *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	size      *prometheus.HistogramVec
}

// New creates the collectors under namespace and registers them with reg.
func New(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("registerer must not be nil")
	}

	r := &Recorder{
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Finished downloads by transport and outcome.",
			},
			[]string{"transport", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "download_duration_seconds",
				Help:      "Wall time of a download from resolve to commit.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"transport"},
		),
		size: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "download_size_bytes",
				Help:      "Size of committed files.",
				// 1KB through 64MB.
				Buckets: prometheus.ExponentialBuckets(1024, 4, 9),
			},
			[]string{"transport"},
		),
	}

	for _, c := range []prometheus.Collector{r.downloads, r.duration, r.size} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	return r, nil
}

// Record counts res under its outcome: "success" or the failure kind.
func (r *Recorder) Record(transport string, res download.Result, elapsed time.Duration) {
	outcome := outcomeSuccess
	if !res.Success {
		outcome = res.Kind.String()
	}

	r.downloads.WithLabelValues(transport, outcome).Inc()
	r.duration.WithLabelValues(transport).Observe(elapsed.Seconds())

	if res.Success {
		r.size.WithLabelValues(transport).Observe(float64(res.Size))
	}
}
