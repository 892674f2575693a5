// Package metrics exports upload and storage cleanup counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Asset classes used as label values.
const (
	Image    = "image"
	Document = "document"
)

// Recorder counts uploads and storage removals. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	uploads       *prometheus.CounterVec
	uploadedBytes *prometheus.CounterVec
	removals      *prometheus.CounterVec
}

// New registers the catalog counters on reg (prometheus.DefaultRegisterer
// when nil). Collectors already registered under the same name are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	uploads, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "uploads_total",
		Help:      "Upload attempts by asset class and result.",
	}, []string{"asset_class", "result"}))
	if err != nil {
		return nil, err
	}
	uploadedBytes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "uploaded_bytes_total",
		Help:      "Bytes successfully written to storage.",
	}, []string{"asset_class"}))
	if err != nil {
		return nil, err
	}
	removals, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "storage_removals_total",
		Help:      "Best-effort storage removals by asset class and result.",
	}, []string{"asset_class", "result"}))
	if err != nil {
		return nil, err
	}
	return &Recorder{uploads: uploads, uploadedBytes: uploadedBytes, removals: removals}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register counter: %w", err)
	}
	return c, nil
}

// Upload records one upload attempt.
func (r *Recorder) Upload(class string, size int64, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.uploads.WithLabelValues(class, "error").Inc()
		return
	}
	r.uploads.WithLabelValues(class, "ok").Inc()
	r.uploadedBytes.WithLabelValues(class).Add(float64(size))
}

// Removal records one best-effort removal; removed is Dir.Remove's result.
func (r *Recorder) Removal(class string, removed bool) {
	if r == nil {
		return
	}
	result := "removed"
	if !removed {
		result = "skipped"
	}
	r.removals.WithLabelValues(class, result).Inc()
}
