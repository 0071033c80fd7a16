package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every missionlens collector and is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// BrokerConnected reports the MQTT ingress connection (1=up, 0=down).
	BrokerConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "missionlens_broker_connected",
			Help: "Whether the MQTT ingress client is connected (1=connected, 0=disconnected).",
		},
	)

	// MessagesReceived counts decoded messages handed to the router.
	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missionlens_messages_received_total",
			Help: "Total number of mission spec and telemetry messages accepted.",
		},
		[]string{"kind"}, // kind: spec/telemetry
	)

	// MessagesDropped counts messages rejected before reaching a tracker.
	MessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missionlens_messages_dropped_total",
			Help: "Total number of messages dropped before tracking.",
		},
		[]string{"reason"}, // reason: decode/invalid/no_vehicle/not_in_fleet/stopped
	)

	TrackedVehicles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "missionlens_tracked_vehicles",
			Help: "Number of vehicles currently registered.",
		},
	)

	// GraphRebuilds counts graph resolutions by the message kind that triggered them.
	GraphRebuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missionlens_graph_rebuilds_total",
			Help: "Total number of mission graphs rebuilt.",
		},
		[]string{"trigger"},
	)

	DynamicStates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "missionlens_dynamic_states_total",
			Help: "Total number of graphs that needed a synthetic node for an unrecognized activity.",
		},
	)

	OffPlanTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missionlens_off_plan_transitions_total",
			Help: "Total number of highlighted state changes that follow no declared transition.",
		},
		[]string{"vehicle"},
	)

	UndeclaredTargets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "missionlens_undeclared_targets_total",
			Help: "Total number of transition targets seen without a state definition.",
		},
	)

	SnapshotFlushLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "missionlens_snapshot_flush_seconds",
			Help:    "Latency of flushing buffered snapshots to object storage.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		BrokerConnected,
		MessagesReceived,
		MessagesDropped,
		TrackedVehicles,
		GraphRebuilds,
		DynamicStates,
		OffPlanTransitions,
		UndeclaredTargets,
		SnapshotFlushLatency,
	)
}
