package tracker

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

// DefaultSweepInterval is how often retention is checked.
const DefaultSweepInterval = 30 * time.Second

// Sweeper deregisters vehicles that have been silent longer than TTL.
// A zero TTL disables expiry; vehicles then leave only by explicit
// deregistration.
type Sweeper struct {
	router   *Router
	ttl      time.Duration
	interval time.Duration
	clock    clock.WithTicker
	log      logr.Logger
}

// NewSweeper returns a Sweeper over router's registry.
func NewSweeper(router *Router, ttl, interval time.Duration, clk clock.WithTicker, logger logr.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Sweeper{router: router, ttl: ttl, interval: interval, clock: clk, log: logger.WithName("sweeper")}
}

// Start sweeps on every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.ttl <= 0 {
		s.log.V(1).Info("Retention TTL disabled")
		return nil
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info("Sweeper started", "ttl", s.ttl, "interval", s.interval)

	for {
		select {
		case <-ticker.C():
			s.Sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Sweep deregisters every expired vehicle and returns their identifiers.
func (s *Sweeper) Sweep(ctx context.Context) []string {
	if s.ttl <= 0 {
		return nil
	}

	now := s.clock.Now()
	var expired []string
	for _, t := range s.router.Registry().List() {
		idle := now.Sub(t.LastSeen())
		if idle <= s.ttl {
			continue
		}
		if err := s.router.Deregister(ctx, t.ID()); err != nil {
			s.log.Error(err, "Failed to deregister expired vehicle", "vehicle", t.ID())
			continue
		}
		s.log.Info("Vehicle expired", "vehicle", t.ID(), "idle", idle)
		expired = append(expired, t.ID())
	}
	return expired
}
