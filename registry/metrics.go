// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	executed *prometheus.CounterVec
	failed   *prometheus.CounterVec
	rejected prometheus.Counter
	oracles  prometheus.Gauge

	executeLatency metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	executeLatency, err := metric.NewAverager(
		"registry_execute_latency",
		"time spent executing an action",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		executeLatency: executeLatency,
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "executed",
			Help:      "number of actions committed",
		}, []string{"action"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "failed",
			Help:      "number of actions that failed",
		}, []string{"action"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "rejected_txs",
			Help:      "number of transactions rejected before execution",
		}),
		oracles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "registry",
			Name:      "oracles",
			Help:      "number of registered oracles",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.executed),
		r.Register(m.failed),
		r.Register(m.rejected),
		r.Register(m.oracles),
	)
	return m, errs.Err
}

// ActionName returns the metric and log label for [typeID].
func ActionName(typeID uint8) string {
	switch typeID {
	case InitializeID:
		return "initialize"
	case AddOracleID:
		return "add_oracle"
	case UpdateRateID:
		return "update_rate"
	case DelegateID:
		return "delegate"
	case UndelegateID:
		return "undelegate"
	default:
		return "unknown"
	}
}
