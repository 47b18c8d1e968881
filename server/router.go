// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

var (
	errUnknownBaseURL  = errors.New("unknown base url")
	errUnknownEndpoint = errors.New("unknown endpoint")
	errRouteExists     = errors.New("route already exists")
)

type router struct {
	lock   sync.RWMutex
	router *mux.Router

	// base -> endpoint -> handler
	routes map[string]map[string]http.Handler
}

func newRouter() *router {
	return &router{
		router: mux.NewRouter(),
		routes: make(map[string]map[string]http.Handler),
	}
}

func (r *router) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	r.router.ServeHTTP(writer, request)
}

func (r *router) GetHandler(base, endpoint string) (http.Handler, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	urlBase, exists := r.routes[base]
	if !exists {
		return nil, fmt.Errorf("%w: %s", errUnknownBaseURL, base)
	}
	handler, exists := urlBase[endpoint]
	if !exists {
		return nil, fmt.Errorf("%w: %s%s", errUnknownEndpoint, base, endpoint)
	}
	return handler, nil
}

func (r *router) AddRouter(base, endpoint string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	endpoints := r.routes[base]
	if endpoints == nil {
		endpoints = make(map[string]http.Handler)
	}
	url := base + endpoint
	if _, exists := endpoints[endpoint]; exists {
		return fmt.Errorf("%w: %s", errRouteExists, url)
	}
	endpoints[endpoint] = handler
	r.routes[base] = endpoints

	// Routes are named by their url so they can be looked up later.
	route := r.router.Handle(url, handler)
	if route == nil {
		return fmt.Errorf("failed to create new route for %s", url)
	}
	route.Name(url)
	return nil
}
