package mqtt

import (
	"context"
	"errors"
	"fmt"

	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/mission"
)

// dropError marks a message that was discarded on purpose. reason becomes
// the metrics label.
type dropError struct {
	reason string
	err    error
}

func (e *dropError) Error() string { return fmt.Sprintf("%s: %v", e.reason, e.err) }
func (e *dropError) Unwrap() error { return e.err }

func drop(reason string, err error) error {
	return &dropError{reason: reason, err: err}
}

// handleSpec accepts {root}/drone/{id}/mission-spec.
func (s *Server) handleSpec(ctx context.Context, topicName string, payload []byte) error {
	levels, ok := s.topics.Split(topicName)
	if !ok || len(levels) != 3 || levels[0] != paths.Drone || levels[2] != paths.MissionSpec {
		return drop("no_vehicle", fmt.Errorf("unexpected spec topic %q", topicName))
	}
	id := levels[1]
	if id == "" {
		return drop("no_vehicle", fmt.Errorf("empty vehicle id in %q", topicName))
	}

	spec, err := mission.ParseSpec(payload)
	if err != nil {
		if errors.Is(err, mission.ErrEmptyStateName) || errors.Is(err, mission.ErrEmptyTarget) {
			return drop("invalid", err)
		}
		return drop("decode", err)
	}

	return s.dispatch(ctx, tracker.Message{Kind: tracker.KindSpec, VehicleID: id, Spec: spec})
}

// handleTelemetry accepts {root}/update_drone. The vehicle is named in the
// payload.
func (s *Server) handleTelemetry(ctx context.Context, _ string, payload []byte) error {
	tel, err := mission.ParseTelemetry(payload)
	if err != nil {
		if errors.Is(err, mission.ErrMissingVehicleID) {
			return drop("no_vehicle", err)
		}
		return drop("decode", err)
	}

	return s.dispatch(ctx, tracker.Message{Kind: tracker.KindTelemetry, VehicleID: tel.VehicleID, Telemetry: tel})
}

func (s *Server) dispatch(ctx context.Context, msg tracker.Message) error {
	err := s.svc.Dispatch(ctx, msg)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tracker.ErrNotInFleet):
		return drop("not_in_fleet", err)
	case errors.Is(err, tracker.ErrStopped), errors.Is(err, context.Canceled):
		return drop("stopped", err)
	default:
		return err
	}
}

// record updates metrics for a handler result and reports whether it should
// be logged as an error.
func record(err error) bool {
	var d *dropError
	if errors.As(err, &d) {
		metrics.MessagesDropped.WithLabelValues(d.reason).Inc()
		return d.reason == "decode" || d.reason == "invalid"
	}
	return err != nil
}
