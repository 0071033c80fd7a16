package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/options"
)

type Server struct {
	server  *http.Server
	options *options.HttpOptions
	svc     core.VehicleService
}

func NewServer(opts *options.HttpOptions, svc core.VehicleService) *Server {
	s := &Server{options: opts, svc: svc}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.Timeout,
		WriteTimeout:      opts.Timeout,
	}
	return s
}

// Handler returns the routed handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Readiness follows the broker connection.
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Keep these on the root router; a mux subrouter reports method
	// mismatches as 404.
	const api = "/api/v1"
	r.HandleFunc(api+"/vehicles", s.listVehicles).Methods(http.MethodGet)
	r.HandleFunc(api+"/vehicles/{id}", s.getVehicle).Methods(http.MethodGet)
	r.HandleFunc(api+"/vehicles/{id}", s.deleteVehicle).Methods(http.MethodDelete)
	r.HandleFunc(api+"/vehicles/{id}/graph", s.getGraph).Methods(http.MethodGet)
	r.HandleFunc(api+"/vehicles/{id}/spec", s.getSpec).Methods(http.MethodGet)

	return r
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen(s.options.Network, s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on http addr %s: %w", s.server.Addr, err)
	}
	log.Info("Starting HTTP Server", "addr", lis.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
