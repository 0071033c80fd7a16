package tracker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Sink receives every snapshot produced by the router.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot) error
	// Remove clears anything published for a deregistered vehicle.
	Remove(ctx context.Context, vehicleID string) error
}

// MultiSink fans a snapshot out to several sinks concurrently.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, snap Snapshot) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m {
		g.Go(func() error { return s.Publish(ctx, snap) })
	}
	return g.Wait()
}

func (m MultiSink) Remove(ctx context.Context, vehicleID string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m {
		g.Go(func() error { return s.Remove(ctx, vehicleID) })
	}
	return g.Wait()
}

// SinkFuncs adapts plain functions to Sink. Nil functions are no-ops.
type SinkFuncs struct {
	PublishFunc func(ctx context.Context, snap Snapshot) error
	RemoveFunc  func(ctx context.Context, vehicleID string) error
}

func (f SinkFuncs) Publish(ctx context.Context, snap Snapshot) error {
	if f.PublishFunc == nil {
		return nil
	}
	return f.PublishFunc(ctx, snap)
}

func (f SinkFuncs) Remove(ctx context.Context, vehicleID string) error {
	if f.RemoveFunc == nil {
		return nil
	}
	return f.RemoveFunc(ctx, vehicleID)
}
