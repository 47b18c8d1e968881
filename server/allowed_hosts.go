// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/ava-labs/avalanchego/utils/set"
)

const wildcard = "*"

var _ http.Handler = (*allowedHostsHandler)(nil)

func filterInvalidHosts(
	handler http.Handler,
	allowed []string,
) http.Handler {
	s := set.Set[string]{}
	for _, host := range allowed {
		if host == wildcard {
			return handler
		}
		s.Add(strings.ToLower(host))
	}
	return &allowedHostsHandler{
		handler: handler,
		hosts:   s,
	}
}

// allowedHostsHandler rejects requests whose Host header names a host that
// is not allowed. Bare IPs are always accepted.
type allowedHostsHandler struct {
	handler http.Handler
	hosts   set.Set[string]
}

func (a *allowedHostsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Host == "" {
		a.handler.ServeHTTP(w, r)
		return
	}

	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		// No port present
		host = r.Host
	}

	if ip := net.ParseIP(host); ip != nil {
		a.handler.ServeHTTP(w, r)
		return
	}

	if !a.hosts.Contains(strings.ToLower(host)) {
		http.Error(w, "invalid host specified", http.StatusForbidden)
		return
	}

	a.handler.ServeHTTP(w, r)
}
