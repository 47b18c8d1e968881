// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/server"
)

const Name = "fxregistry"

// Backend is what one venue exposes over the API.
type Backend struct {
	Engine *registry.Engine
	Parser *registry.Parser
	// Program is only set at the base venue.
	Program *delegation.Program
	Tracer  trace.Tracer
	Log     logging.Logger
}

type Handler struct {
	Path    string
	Handler http.Handler
}

type HandlerFactory[T any] interface {
	New(t T) (Handler, error)
}

// Register mounts the handler each factory builds for [backend] under
// BaseURL/Name.
func Register(s server.PathAdder, backend *Backend, factories ...HandlerFactory[*Backend]) error {
	for _, f := range factories {
		h, err := f.New(backend)
		if err != nil {
			return err
		}
		if err := s.AddRoute(h.Handler, Name, h.Path); err != nil {
			return fmt.Errorf("failed to add route %s: %w", h.Path, err)
		}
	}
	return nil
}

// VenuePath is the endpoint of the venue [backend] serves.
func VenuePath(backend *Backend) string {
	return "/" + backend.Engine.Venue().String()
}
