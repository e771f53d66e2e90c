// Package metrics holds the Prometheus collectors shared by the clock, the
// loader and the gRPC interceptors.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector exported by the service
type Metrics struct {
	ClockTicks    *prometheus.CounterVec
	ActiveClocks  prometheus.Gauge
	Loads         *prometheus.CounterVec
	LoadLatency   *prometheus.HistogramVec
	LoadedRecords *prometheus.GaugeVec
	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
}

// New creates unregistered collectors
func New() *Metrics {
	return &Metrics{
		ClockTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockfeed_clock_ticks_total",
			Help: "Number of clock updates applied",
		}, []string{"country"}),
		ActiveClocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clockfeed_clock_active",
			Help: "Number of clocks currently holding a ticker",
		}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockfeed_collection_loads_total",
			Help: "Number of collection loads by outcome",
		}, []string{"collection", "status"}),
		LoadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clockfeed_collection_load_duration_seconds",
			Help:    "Duration of collection loads",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection"}),
		LoadedRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clockfeed_collection_records",
			Help: "Number of records held by a ready collection",
		}, []string{"collection"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockfeed_grpc_requests_total",
			Help: "Number of gRPC requests by method",
		}, []string{"method"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clockfeed_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Register adds all collectors to reg. When a collector with the same
// description is already registered, m switches to the existing one so
// every Metrics value sharing reg reports into the same series.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var err error
	if m.ClockTicks, err = registerCollector(reg, m.ClockTicks); err != nil {
		return err
	}
	if m.ActiveClocks, err = registerCollector(reg, m.ActiveClocks); err != nil {
		return err
	}
	if m.Loads, err = registerCollector(reg, m.Loads); err != nil {
		return err
	}
	if m.LoadLatency, err = registerCollector(reg, m.LoadLatency); err != nil {
		return err
	}
	if m.LoadedRecords, err = registerCollector(reg, m.LoadedRecords); err != nil {
		return err
	}
	if m.Requests, err = registerCollector(reg, m.Requests); err != nil {
		return err
	}
	if m.Latency, err = registerCollector(reg, m.Latency); err != nil {
		return err
	}
	return nil
}

func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, err
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("collector already registered with a different type: %w", err)
	}
	return existing, nil
}
