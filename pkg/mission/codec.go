package mission

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status keys consumed by the tracker. Everything else in a telemetry status
// block is carried through untouched.
const (
	StatusKeyActivity = "onboard_pilot"
	StatusKeyMode     = "mode"
)

var ErrMissingVehicleID = errors.New("telemetry has no uavid")

// Telemetry is one decoded vehicle telemetry message.
type Telemetry struct {
	VehicleID string
	// Activity is status.onboard_pilot, "" when absent.
	Activity string
	Mode     string
	// Status is the full status block as received.
	Status map[string]any
}

type telemetryWire struct {
	UAVID  string         `json:"uavid"`
	Status map[string]any `json:"status"`
}

// ParseSpec decodes and validates a mission spec message.
func ParseSpec(payload []byte) (Spec, error) {
	var spec Spec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode mission spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, fmt.Errorf("invalid mission spec: %w", err)
	}
	return spec, nil
}

// ParseTelemetry decodes a telemetry message.
func ParseTelemetry(payload []byte) (Telemetry, error) {
	var w telemetryWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Telemetry{}, fmt.Errorf("decode telemetry: %w", err)
	}
	if w.UAVID == "" {
		return Telemetry{}, ErrMissingVehicleID
	}
	if w.Status == nil {
		w.Status = map[string]any{}
	}

	return Telemetry{
		VehicleID: w.UAVID,
		Activity:  statusString(w.Status, StatusKeyActivity),
		Mode:      statusString(w.Status, StatusKeyMode),
		Status:    w.Status,
	}, nil
}

// MarshalJSON writes the wire form.
func (t Telemetry) MarshalJSON() ([]byte, error) {
	return json.Marshal(telemetryWire{UAVID: t.VehicleID, Status: t.Status})
}

func statusString(status map[string]any, key string) string {
	switch v := status[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
