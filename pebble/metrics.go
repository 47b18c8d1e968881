// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics track how a venue uses its database: every ledger update is one
// batch, and reads are account lookups. The registry is registered under the
// venue namespace by the caller.
type metrics struct {
	getLatency   metric.Averager
	batchLatency metric.Averager
	batchBytes   prometheus.Histogram
	batches      *prometheus.CounterVec

	delayStart  time.Time
	writeStall  metric.Averager
	compactions prometheus.Counter
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	errs := wrappers.Errs{}
	m := &metrics{
		getLatency:   metric.NewAveragerWithErrs("pebble_read_latency", "time spent waiting for db get", r, &errs),
		batchLatency: metric.NewAveragerWithErrs("pebble_batch_latency", "time spent committing a batch", r, &errs),
		writeStall:   metric.NewAveragerWithErrs("pebble_write_stall", "time spent waiting for disk write", r, &errs),
		batchBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pebble",
			Name:      "batch_bytes",
			Help:      "size of committed batches",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 6),
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pebble",
			Name:      "batches",
			Help:      "number of batch commits by outcome",
		}, []string{"result"}),
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pebble",
			Name:      "compactions",
			Help:      "number of compactions",
		}),
	}
	errs.Add(
		r.Register(m.batchBytes),
		r.Register(m.batches),
		r.Register(m.compactions),
	)
	return r, m, errs.Err
}

func (m *metrics) observeBatch(size int, start time.Time, err error) {
	if err != nil {
		m.batches.WithLabelValues("failed").Inc()
		return
	}
	m.batches.WithLabelValues("committed").Inc()
	m.batchBytes.Observe(float64(size))
	m.batchLatency.Observe(float64(time.Since(start)))
}

func (db *Database) onCompactionBegin(pebble.CompactionInfo) {
	db.metrics.compactions.Inc()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.delayStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.delayStart)))
}
