// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/trace/noop"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ava-labs/fxregistry/consts"
)

var _ trace.Tracer = (*noOpTracer)(nil)

// noOpTracer is an implementation of trace.Tracer that does nothing. The
// embedded tracer supplies Start and the otel embedding marker.
type noOpTracer struct {
	oteltrace.Tracer
}

func newNoOpTracer(name string) *noOpTracer {
	return &noOpTracer{Tracer: noop.NewTracerProvider().Tracer(name)}
}

// Noop returns a tracer that records nothing.
func Noop() trace.Tracer {
	return newNoOpTracer(consts.Name)
}

func (*noOpTracer) Close() error {
	return nil
}
