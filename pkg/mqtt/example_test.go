package mqtt_test

import (
	"context"
	"fmt"
	"time"

	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
)

// ExampleClient shows the lifecycle used by the missionlens ingress: create,
// start, subscribe to the fleet topics, then disconnect on shutdown.
func ExampleClient() {
	cfg := &mqtt.ClientConfig{
		BrokerURL:      "tcp://localhost:1883",
		ClientID:       "missionlens-example",
		KeepAlive:      60,
		ConnectTimeout: 5 * time.Second,
		CleanStart:     true,
	}

	client, err := mqtt.NewClient(cfg)
	if err != nil {
		log.Error(err, "Failed to create MQTT client")
		return
	}

	// Start returns immediately; the connection is managed in the background.
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		log.Error(err, "Failed to start MQTT client")
		return
	}
	defer client.Disconnect(ctx)

	topics := topic.NewBuilder("")
	specs := topics.Build("drone", topic.Wildcard, "mission-spec")
	if err := client.Subscribe(ctx, specs, 1, func(_ context.Context, t string, payload []byte) {
		fmt.Printf("mission spec on %s: %d bytes\n", t, len(payload))
	}); err != nil {
		log.Error(err, "Failed to subscribe", "topic", specs)
	}

	awaitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.AwaitConnection(awaitCtx); err != nil {
		log.Error(err, "Connection timed out")
	}
}
