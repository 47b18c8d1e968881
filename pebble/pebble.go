// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var _ database.KeyValueReaderWriterDeleter = (*Database)(nil)

type Config struct {
	CacheSize                   int  `json:"cacheSize" mapstructure:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync" mapstructure:"bytesPerSync"`
	WALBytesPerSync             int  `json:"walBytesPerSync" mapstructure:"walBytesPerSync"`
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold" mapstructure:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize" mapstructure:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles" mapstructure:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions" mapstructure:"concurrentCompactions"`
	Sync                        bool `json:"sync" mapstructure:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   64 * units.MiB,
		BytesPerSync:                512 * units.KiB,
		WALBytesPerSync:             0,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

// Database is a pebble-backed key-value store. The registry account set is
// tiny, so no iteration or compaction APIs are exposed.
type Database struct {
	db      *pebble.DB
	metrics *metrics

	writeOpts *pebble.WriteOptions

	closeOnce sync.Once
}

func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics:   metrics,
		writeOpts: pebble.NoSync,
	}
	if cfg.Sync {
		d.writeOpts = pebble.Sync
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions: func() int {
			return cfg.ConcurrentCompactions
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1 // explicitly disable seek compaction
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	return d, registry, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	_, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	start := time.Now()
	data, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	db.metrics.getLatency.Observe(float64(time.Since(start)))
	ret := slices.Clone(data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	return db.db.Set(key, value, db.writeOpts)
}

func (db *Database) Delete(key []byte) error {
	return db.db.Delete(key, db.writeOpts)
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db, b: db.db.NewBatch()}
}

func (db *Database) Close() error {
	var err error
	db.closeOnce.Do(func() {
		err = db.db.Close()
	})
	return err
}
