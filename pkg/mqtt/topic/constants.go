package topic

// MQTT filter tokens.
const (
	// Wildcard is the single-level wildcard "+".
	// Example: "drone/+/mission-spec" matches "drone/Red/mission-spec".
	Wildcard = "+"

	// SharePrefix marks a shared subscription filter.
	SharePrefix = "$share"
)
