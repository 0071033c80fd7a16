package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autopeer-io/missionlens/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/missionlens/internal/tracker"
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
)

var _ tracker.Sink = (*MQTTNotifier)(nil)

// MQTTNotifier publishes every vehicle's mission graph as a retained message
// on {root}/drone/{id}/mission-graph.
type MQTTNotifier struct {
	client pkgmqtt.Publisher
	topics *topic.Builder
	qos    int
}

// NewMQTTNotifier wraps an already started egress client. The ingress client
// is kept separate so a slow publisher never stalls subscriptions.
func NewMQTTNotifier(client pkgmqtt.Publisher, topics *topic.Builder, qos byte) *MQTTNotifier {
	return &MQTTNotifier{client: client, topics: topics, qos: int(qos)}
}

func (n *MQTTNotifier) graphTopic(vehicleID string) string {
	return n.topics.Build(paths.Drone, vehicleID, paths.MissionGraph)
}

// Publish sends the current view. Snapshots without a graph are skipped.
func (n *MQTTNotifier) Publish(ctx context.Context, snap tracker.Snapshot) error {
	if snap.View == nil {
		return nil
	}

	payload, err := json.Marshal(snap.View)
	if err != nil {
		return fmt.Errorf("marshal mission graph of %s: %w", snap.VehicleID, err)
	}
	return n.client.Publish(ctx, n.graphTopic(snap.VehicleID), n.qos, true, payload)
}

// Remove clears the retained graph of a vehicle.
func (n *MQTTNotifier) Remove(ctx context.Context, vehicleID string) error {
	return pkgmqtt.ClearRetained(ctx, n.client, n.graphTopic(vehicleID), n.qos)
}
