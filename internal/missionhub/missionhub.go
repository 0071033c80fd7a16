package missionhub

import (
	"context"
	"fmt"
	"time"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/missionhub/pipeline"
	"github.com/autopeer-io/missionlens/internal/missionhub/server"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
)

// Server is the mission tracking service.
type Server struct {
	manager  *server.Manager
	registry *tracker.Registry

	// optional egress
	egress   pkgmqtt.Client
	store    core.ObjectStore
	pipeline *pipeline.SnapshotPipeline
}

// Run blocks until ctx is done. Egress outlives the servers so that the
// router can publish what it drains on shutdown.
func (s *Server) Run(ctx context.Context) error {
	egressCtx, stopEgress := context.WithCancel(context.Background())
	defer stopEgress()

	if s.egress != nil {
		if err := s.egress.Start(egressCtx); err != nil {
			return fmt.Errorf("failed to start notifier: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.egress.Disconnect(shutdownCtx)
		}()
	}

	pipelineDone := make(chan error, 1)
	if s.pipeline != nil {
		if err := s.store.CheckBucket(ctx); err != nil {
			return err
		}
		go func() { pipelineDone <- s.pipeline.Start(egressCtx) }()
	} else {
		pipelineDone <- nil
	}

	log.Info("missionlens started")
	err := s.manager.Start(ctx)

	stopEgress()
	if perr := <-pipelineDone; perr != nil && err == nil {
		err = perr
	}
	log.Info("missionlens stopped")
	return err
}

// SetPalette swaps vehicle colors at runtime. The next update of each
// vehicle picks them up.
func (s *Server) SetPalette(p render.Palette) {
	s.registry.SetPalette(p)
}
