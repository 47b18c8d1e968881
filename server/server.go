// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const BaseURL = "/ext"

var _ Server = (*server)(nil)

type PathAdder interface {
	// AddRoute registers [handler] at BaseURL/[base][endpoint].
	AddRoute(handler http.Handler, base, endpoint string) error
}

// Server maintains the HTTP router
type Server interface {
	PathAdder
	// Dispatch serves requests until Shutdown is called
	Dispatch() error
	// Shutdown this server
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"       mapstructure:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" mapstructure:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"      mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"       mapstructure:"idleTimeout"`
}

type Config struct {
	ListenAddress   string        `json:"listenAddress"   mapstructure:"listenAddress"`
	AllowedOrigins  []string      `json:"allowedOrigins"  mapstructure:"allowedOrigins"`
	AllowedHosts    []string      `json:"allowedHosts"    mapstructure:"allowedHosts"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" mapstructure:"shutdownTimeout"`
	HTTPConfig      `mapstructure:",squash"`
}

func NewDefaultConfig() Config {
	return Config{
		ListenAddress:   "127.0.0.1:9650",
		AllowedOrigins:  []string{"*"},
		AllowedHosts:    []string{"localhost"},
		ShutdownTimeout: 10 * time.Second,
		HTTPConfig: HTTPConfig{
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

type server struct {
	baseURL string

	// log this server writes to
	log logging.Logger

	shutdownTimeout time.Duration

	// Maps endpoints to handlers
	router *router

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	baseURL string,
	log logging.Logger,
	listener net.Listener,
	cfg Config,
	wrappers ...Wrapper,
) Server {
	router := newRouter()
	allowedHostsHandler := filterInvalidHosts(router, cfg.AllowedHosts)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(allowedHostsHandler)
	var handler http.Handler = gziphandler.GzipHandler(corsHandler)

	for _, wrapper := range wrappers {
		handler = wrapper.WrapHandler(handler)
	}

	log.Info("API created",
		zap.Stringer("address", listener.Addr()),
		zap.Strings("allowedOrigins", cfg.AllowedOrigins),
		zap.Strings("allowedHosts", cfg.AllowedHosts),
	)

	return &server{
		baseURL:         baseURL,
		log:             log,
		shutdownTimeout: cfg.ShutdownTimeout,
		router:          router,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		listener: listener,
	}
}

func (s *server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := fmt.Sprintf("%s/%s", s.baseURL, base)
	s.log.Info("adding route",
		zap.String("url", url),
		zap.String("endpoint", endpoint),
	)
	return s.router.AddRouter(url, endpoint, handler)
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
