// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package server serves VM handlers over HTTP under /ext.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/luxfi/metric"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/luxfi/log"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64
	wildcard             = "*"
)

var errDuplicateRoute = errors.New("duplicate route")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

// Server maintains the HTTP router. Routes must be added before Dispatch is
// called.
type Server struct {
	// log this server writes to
	log log.Logger

	shutdownTimeout time.Duration

	metrics *serverMetrics

	lock   sync.Mutex
	router *mux.Router
	routes map[string]struct{}

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	log log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	allowedHosts []string,
	shutdownTimeout time.Duration,
	registerer metric.Registerer,
	httpConfig HTTPConfig,
) (*Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	handler := wrapHandler(router, allowedOrigins, allowedHosts)

	httpServer := &http.Server{
		Handler: h2c.NewHandler(
			handler,
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	log.Info("API created with allowed origins: " + strings.Join(allowedOrigins, ","))

	return &Server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          router,
		routes:          make(map[string]struct{}),
		srv:             httpServer,
		listener:        listener,
	}, nil
}

// Dispatch serves traffic until Shutdown is called, after which it returns
// http.ErrServerClosed.
func (s *Server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

// Addr is the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// AddRoute serves handler at /ext/<base><endpoint>.
func (s *Server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := fmt.Sprintf("%s/%s", baseURL, base)
	path := url + endpoint

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.routes[path]; ok {
		return fmt.Errorf("%w: %s", errDuplicateRoute, path)
	}
	s.log.Info("adding route",
		log.String("url", url),
		log.String("endpoint", endpoint),
	)
	s.routes[path] = struct{}{}
	s.router.Handle(path, s.metrics.wrapHandler(base, handler))
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(
	handler http.Handler,
	allowedOrigins []string,
	allowedHosts []string,
) http.Handler {
	h := filterInvalidHosts(handler, allowedHosts)
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(h)
}

// filterInvalidHosts rejects requests whose Host header names neither an IP
// address nor one of allowedHosts.
func filterInvalidHosts(handler http.Handler, allowedHosts []string) http.Handler {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		if host == wildcard {
			return handler
		}
		hosts[strings.ToLower(host)] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if host == "" || net.ParseIP(host) != nil {
			handler.ServeHTTP(w, r)
			return
		}
		if _, ok := hosts[strings.ToLower(host)]; !ok {
			http.Error(w, "invalid host specified", http.StatusForbidden)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
