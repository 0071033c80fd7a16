package core

import (
	"context"

	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

// VehicleService is the use-case surface shared by the ingress and query
// servers.
type VehicleService interface {
	// Dispatch queues a decoded message for its vehicle.
	Dispatch(ctx context.Context, msg tracker.Message) error

	// Vehicles returns the latest snapshot of every vehicle, ordered by slot.
	Vehicles() []tracker.Snapshot
	// Vehicle returns one snapshot or tracker.ErrNotFound.
	Vehicle(id string) (tracker.Snapshot, error)
	// Graph returns the render view of a vehicle's mission, or
	// tracker.ErrNoSpec before one is known.
	Graph(id string) (render.View, error)
	// Spec returns the mission spec of a vehicle.
	Spec(id string) (mission.Spec, error)
	// Deregister forgets a vehicle.
	Deregister(ctx context.Context, id string) error

	// Ready reports whether the service is connected to its data source.
	Ready() bool
}

// ObjectStore persists snapshot documents.
type ObjectStore interface {
	// CheckBucket makes sure the target bucket exists.
	CheckBucket(ctx context.Context) error
	// PutObject writes data under key.
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}
