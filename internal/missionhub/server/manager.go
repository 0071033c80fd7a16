package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/missionhub/server/grpc"
	"github.com/autopeer-io/missionlens/internal/missionhub/server/http"
	"github.com/autopeer-io/missionlens/internal/missionhub/server/mqtt"
	"github.com/autopeer-io/missionlens/pkg/log"
)

// Server defines the common interface for all sub-servers (grpc, mqtt, http)
// and background workers.
type Server interface {
	Start(ctx context.Context) error
}

// Manager manages the lifecycle of all protocol servers.
type Manager struct {
	servers []Server
}

// NewManager creates a new server manager and initializes all sub-servers.
func NewManager(cfg *Config, svc core.VehicleService) *Manager {
	var servers []Server

	// MQTT is the only data source.
	servers = append(servers, mqtt.NewServer(cfg.MqttClient, cfg.Topics, cfg.MqttOptions.ShareGroup, cfg.MqttOptions.QoS, svc))

	// The query API is optional.
	if cfg.GrpcOptions != nil && cfg.GrpcOptions.Addr != "" {
		servers = append(servers, grpc.NewServer(cfg.GrpcOptions, svc))
	}

	servers = append(servers, http.NewServer(cfg.HttpOptions, svc))

	return &Manager{servers: servers}
}

// Add registers a background worker that shares the servers' lifecycle.
func (m *Manager) Add(s Server) {
	m.servers = append(m.servers, s)
}

// Start launches all servers in parallel and waits for termination. The
// first failure cancels the others.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range m.servers {
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting...", "count", len(m.servers))
	return g.Wait()
}
