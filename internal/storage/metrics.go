package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for storage operations.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int64, err error)
	RecordDelete(duration time.Duration, err error)
	RecordPresign(duration time.Duration, err error)
	RecordSweep(duration time.Duration, report SweepReport, err error)
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, int64, error)      {}
func (nopObserver) RecordDelete(time.Duration, error)             {}
func (nopObserver) RecordPresign(time.Duration, error)            {}
func (nopObserver) RecordSweep(time.Duration, SweepReport, error) {}

// PrometheusObserver exports storage metrics to Prometheus.
type PrometheusObserver struct {
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	uploadBytes       prometheus.Counter
	orphansDeleted    prometheus.Counter
}

// NewPrometheusObserver registers upload/delete/presign/sweep metrics.
// Registering twice on the same registerer reuses the existing collectors.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "reference_storage"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	observer := &PrometheusObserver{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency for object storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of object storage failures.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully uploaded to object storage.",
		}),
		orphansDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_deleted_total",
			Help:      "Objects removed by the orphan sweeper.",
		}),
	}

	var err error
	if observer.operationDuration, err = register(reg, observer.operationDuration); err != nil {
		return nil, err
	}
	if observer.operationErrors, err = register(reg, observer.operationErrors); err != nil {
		return nil, err
	}
	if observer.uploadBytes, err = register(reg, observer.uploadBytes); err != nil {
		return nil, err
	}
	if observer.orphansDeleted, err = register(reg, observer.orphansDeleted); err != nil {
		return nil, err
	}
	return observer, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register storage metric: %w", err)
}

// RecordUpload tracks upload duration, size, and failures.
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues("upload").Observe(duration.Seconds())
	if err != nil {
		o.operationErrors.WithLabelValues("upload").Inc()
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordDelete(duration time.Duration, err error) {
	recordOperation(o, "delete", duration, err)
}

func (o *PrometheusObserver) RecordPresign(duration time.Duration, err error) {
	recordOperation(o, "presign", duration, err)
}

func (o *PrometheusObserver) RecordSweep(duration time.Duration, report SweepReport, err error) {
	recordOperation(o, "sweep", duration, err)
	if o == nil {
		return
	}
	o.orphansDeleted.Add(float64(report.Deleted))
	if report.Failed > 0 {
		o.operationErrors.WithLabelValues("sweep_delete").Add(float64(report.Failed))
	}
}

func recordOperation(o *PrometheusObserver, op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.operationErrors.WithLabelValues(op).Inc()
	}
}

var _ Observer = (*PrometheusObserver)(nil)
