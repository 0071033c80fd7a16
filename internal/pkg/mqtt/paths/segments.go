package paths

// Topic segments of the fleet telemetry protocol. Every topic is built under
// an optional root with topic.Builder.

// Upstream: vehicle -> missionlens
const (
	// Drone is the per-vehicle topic prefix.
	// Pattern: {root}/drone/{vehicleID}/...
	Drone = "drone"

	// MissionSpec carries a vehicle's declared mission state machine.
	// Payload: { "states": [ { "name": "...", "transitions": [ { "target": "...", "condition": "..." } ] } ] }
	// Pattern: {root}/drone/{vehicleID}/mission-spec
	MissionSpec = "mission-spec"

	// UpdateDrone is the shared telemetry topic for the whole fleet.
	// Payload: { "uavid": "...", "status": { "onboard_pilot": "...", "mode": "...", ... } }
	// Pattern: {root}/update_drone
	UpdateDrone = "update_drone"
)

// Downstream: missionlens -> displays
const (
	// MissionGraph carries the retained render view of a vehicle's graph.
	// Pattern: {root}/drone/{vehicleID}/mission-graph
	MissionGraph = "mission-graph"
)
