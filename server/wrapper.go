// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
)

// Wrapper decorates the root handler of a Server.
type Wrapper interface {
	WrapHandler(h http.Handler) http.Handler
}

var _ Wrapper = (*RequestLogger)(nil)

// RequestLogger logs every request at debug level.
type RequestLogger struct {
	Log logging.Logger
}

func (l *RequestLogger) WrapHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		l.Log.Debug("served request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
