/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

const (
	namespace = "egs"
	subsystem = "sdk"
)

type metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	tokenExchanges *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "EGS API calls by method, path and HTTP status.",
			},
			[]string{"method", "path", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Latency of EGS API calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		tokenExchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "token_exchanges_total",
				Help:      "API key to access token exchanges by result.",
			},
			[]string{"result"},
		),
	}

	if registerer != nil {
		m.requests = register(registerer, m.requests)
		m.duration = register(registerer, m.duration)
		m.tokenExchanges = register(registerer, m.tokenExchanges)
	}

	return m
}

// register returns the collector already registered under the same name
// when there is one, so several clients can share a registry.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			if existing, ok := alreadyRegistered.ExistingCollector.(T); ok {
				return existing
			}
		}
	}

	return collector
}

// code is "error" for calls that never got a response.
func (m *metrics) observeRequest(method string, path string, status int, elapsed time.Duration) {
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(method, path, code).Inc()
	m.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *metrics) observeTokenExchange(result string) {
	m.tokenExchanges.WithLabelValues(result).Inc()
}
