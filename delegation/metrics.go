// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegation

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	delegations    prometheus.Counter
	undelegations  prometheus.Counter
	commits        prometheus.Counter
	commitFailures prometheus.Counter
	active         prometheus.Gauge
	commitLatency  metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	commitLatency, err := metric.NewAverager(
		"delegation_commit_latency",
		"time spent checkpointing a delegated account",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		commitLatency: commitLatency,
		delegations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delegation",
			Name:      "delegations",
			Help:      "number of accounts delegated",
		}),
		undelegations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delegation",
			Name:      "undelegations",
			Help:      "number of accounts undelegated",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delegation",
			Name:      "commits",
			Help:      "number of checkpoints written to the base venue",
		}),
		commitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delegation",
			Name:      "commit_failures",
			Help:      "number of checkpoints that failed",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "delegation",
			Name:      "active",
			Help:      "number of accounts currently delegated",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.delegations),
		r.Register(m.undelegations),
		r.Register(m.commits),
		r.Register(m.commitFailures),
		r.Register(m.active),
	)
	return m, errs.Err
}
