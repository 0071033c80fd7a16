package missionhub

import (
	"fmt"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/missionlens/internal/missionhub/core/service"
	"github.com/autopeer-io/missionlens/internal/missionhub/notifier"
	"github.com/autopeer-io/missionlens/internal/missionhub/pipeline"
	"github.com/autopeer-io/missionlens/internal/missionhub/server"
	"github.com/autopeer-io/missionlens/internal/missionhub/storage"
	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
	"github.com/autopeer-io/missionlens/pkg/options"
)

type Config struct {
	HttpOptions    *options.HttpOptions
	GrpcOptions    *options.GrpcOptions
	MqttOptions    *options.MqttOptions
	S3Options      *options.S3Options
	TrackerOptions *options.TrackerOptions
}

func (cfg *Config) NewServer() (*Server, error) {
	topics := topic.NewBuilder(cfg.MqttOptions.TopicRoot)
	s := &Server{}

	// 1. Egress: retained mission graphs and archived snapshots
	var sinks tracker.MultiSink
	if cfg.MqttOptions.PublishGraphs {
		egress, err := pkgmqtt.NewClient(cfg.MqttOptions.ToClientConfig("notifier"))
		if err != nil {
			return nil, fmt.Errorf("failed to init notifier: %w", err)
		}
		s.egress = egress
		sinks = append(sinks, notifier.NewMQTTNotifier(egress, topics, cfg.MqttOptions.QoS))
	}
	if cfg.S3Options.Enabled() {
		store, err := storage.NewMinIO(cfg.S3Options)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.pipeline = pipeline.NewSnapshotPipeline(store, cfg.S3Options.Prefix, cfg.S3Options.FlushInterval, clock.RealClock{})
		sinks = append(sinks, s.pipeline)
	}

	// 2. Core: trackers, per-vehicle queues and retention
	s.registry = tracker.NewRegistry(tracker.RegistryConfig{
		Fleet:       cfg.TrackerOptions.Fleet,
		StrictFleet: cfg.TrackerOptions.StrictFleet,
		Builder:     cfg.TrackerOptions.Builder(),
		Adapter:     render.NewAdapter(cfg.TrackerOptions.ColorPalette()),
		Logger:      log.WithName("tracker"),
	})
	router := tracker.NewRouter(s.registry, sinks, cfg.TrackerOptions.QueueSize, log.WithName("router"))
	sweeper := tracker.NewSweeper(router, cfg.TrackerOptions.RetentionTTL, cfg.TrackerOptions.SweepInterval, clock.RealClock{}, log.Logr())
	svc := service.New(router)

	// 3. Ingress: readiness follows the broker connection
	ingressCfg := cfg.MqttOptions.ToClientConfig("ingress")
	ingressCfg.OnConnectionChange = func(connected bool) {
		svc.SetReady(connected)
		if connected {
			metrics.BrokerConnected.Set(1)
		} else {
			metrics.BrokerConnected.Set(0)
		}
	}
	ingress, err := pkgmqtt.NewClient(ingressCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	// 4. Servers
	s.manager = server.NewManager(&server.Config{
		HttpOptions: cfg.HttpOptions,
		GrpcOptions: cfg.GrpcOptions,
		MqttOptions: cfg.MqttOptions,
		MqttClient:  ingress,
		Topics:      topics,
	}, svc)
	s.manager.Add(router)
	s.manager.Add(sweeper)

	return s, nil
}
