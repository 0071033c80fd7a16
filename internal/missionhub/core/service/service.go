package service

import (
	"context"
	"sync/atomic"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

var _ core.VehicleService = (*Service)(nil)

// Service implements core.VehicleService on top of the tracker router.
type Service struct {
	router   *tracker.Router
	registry *tracker.Registry
	ready    atomic.Bool
}

// New creates the service. It starts not ready.
func New(router *tracker.Router) *Service {
	return &Service{router: router, registry: router.Registry()}
}

// SetReady records the state of the upstream connection.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Service) Ready() bool {
	return s.ready.Load()
}

func (s *Service) Dispatch(ctx context.Context, msg tracker.Message) error {
	return s.router.Dispatch(ctx, msg)
}

func (s *Service) Vehicles() []tracker.Snapshot {
	trackers := s.registry.List()
	out := make([]tracker.Snapshot, 0, len(trackers))
	for _, t := range trackers {
		out = append(out, t.Snapshot())
	}
	return out
}

func (s *Service) Vehicle(id string) (tracker.Snapshot, error) {
	t, ok := s.registry.Get(id)
	if !ok {
		return tracker.Snapshot{}, tracker.ErrNotFound
	}
	return t.Snapshot(), nil
}

func (s *Service) Graph(id string) (render.View, error) {
	snap, err := s.Vehicle(id)
	if err != nil {
		return render.View{}, err
	}
	if snap.View == nil {
		return render.View{}, tracker.ErrNoSpec
	}
	return *snap.View, nil
}

func (s *Service) Spec(id string) (mission.Spec, error) {
	t, ok := s.registry.Get(id)
	if !ok {
		return mission.Spec{}, tracker.ErrNotFound
	}
	return t.Spec()
}

func (s *Service) Deregister(ctx context.Context, id string) error {
	return s.router.Deregister(ctx, id)
}
