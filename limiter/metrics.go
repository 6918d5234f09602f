// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ratiolimit"

// metrics reports the registry's observations. Metrics are observability
// only and never feed back into limiter decisions.
type metrics struct {
	value      *prometheus.GaugeVec
	violations *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		value: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "value",
				Help:      "most recently accepted value per scope",
			},
			[]string{"scope"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "violations",
				Help:      "number of rejected samples per limiter",
			},
			[]string{"scope", "label"},
		),
	}
	if registerer == nil {
		return m, nil
	}
	for _, collector := range []prometheus.Collector{m.value, m.violations} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observeValue(scope string, value float64) {
	m.value.WithLabelValues(scope).Set(value)
}

func (m *metrics) observeViolation(scope, label string) {
	m.violations.WithLabelValues(scope, label).Inc()
}
