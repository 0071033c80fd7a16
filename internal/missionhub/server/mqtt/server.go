package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/missionlens/pkg/log"
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
)

type handlerFunc func(ctx context.Context, topic string, payload []byte) error

// Server implements the MQTT ingress layer.
type Server struct {
	client pkgmqtt.Client
	topics *topic.Builder
	group  string
	qos    int
	svc    core.VehicleService
}

// NewServer creates the ingress server. group, when not empty, subscribes
// through a shared subscription.
func NewServer(client pkgmqtt.Client, topics *topic.Builder, group string, qos byte, svc core.VehicleService) *Server {
	return &Server{
		client: client,
		topics: topics,
		group:  group,
		qos:    int(qos),
		svc:    svc,
	}
}

// Start connects to the broker, subscribes and blocks until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return err
	}

	defer func() {
		log.Info("Disconnecting MQTT client...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.client.Disconnect(shutdownCtx)
		log.Info("MQTT client disconnected")
	}()

	log.Info("Waiting for MQTT connection...")
	if err := s.client.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("MQTT Connected")

	if err := s.initSubscriptions(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func (s *Server) filter(segments ...string) string {
	b := s.topics
	if s.group != "" {
		b = b.Shared(s.group)
	}
	return b.Build(segments...)
}

func (s *Server) initSubscriptions(ctx context.Context) error {
	subscriptions := []struct {
		filter  string
		handler handlerFunc
	}{
		{s.filter(paths.Drone, topic.Wildcard, paths.MissionSpec), s.handleSpec},
		{s.filter(paths.UpdateDrone), s.handleTelemetry},
	}

	for _, sub := range subscriptions {
		handler := sub.handler
		filter := sub.filter
		if err := s.client.Subscribe(ctx, filter, s.qos, func(c context.Context, t string, p []byte) {
			if err := handler(c, t, p); record(err) {
				log.Error(err, "Handler execution failed", "topic", t)
			} else if err != nil {
				log.Debug("Message dropped", "topic", t, "reason", err.Error())
			}
		}); err != nil {
			return fmt.Errorf("failed to subscribe to topic: %s, err: %w", filter, err)
		}
		log.Info("Subscribed", "filter", filter)
	}

	return nil
}
