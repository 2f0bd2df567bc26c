package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ServiceCrossref is the key shared by metadata and formatted citation lookups
const ServiceCrossref = "crossref"

// serviceState is the per-service dispatch state. token is a one-slot
// channel acting as a FIFO lock; last is only touched while holding it.
type serviceState struct {
	token chan struct{}
	last  time.Time
}

// RateLimitService enforces a minimum interval between dispatches to the
// same external service. Services without a configured interval never wait.
type RateLimitService struct {
	mu        sync.Mutex
	intervals map[string]time.Duration
	states    map[string]*serviceState
	logger    *zap.Logger
}

// NewRateLimitService creates a new RateLimitService instance
func NewRateLimitService(logger *zap.Logger) *RateLimitService {
	return &RateLimitService{
		intervals: make(map[string]time.Duration),
		states:    make(map[string]*serviceState),
		logger:    logger,
	}
}

// SetInterval configures the minimum interval for a service. A non-positive
// interval removes the limit.
func (s *RateLimitService) SetInterval(serviceKey string, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interval <= 0 {
		delete(s.intervals, serviceKey)
		return
	}
	s.intervals[serviceKey] = interval
}

// Interval returns the configured interval for a service, zero when unlimited
func (s *RateLimitService) Interval(serviceKey string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervals[serviceKey]
}

// Acquire blocks until a request to serviceKey may be dispatched, then
// records the dispatch time. Concurrent callers are served in arrival order.
// A caller whose context ends while waiting returns ctx.Err() without
// recording a dispatch.
func (s *RateLimitService) Acquire(ctx context.Context, serviceKey string) error {
	interval, state := s.lookup(serviceKey)
	if interval <= 0 {
		return nil
	}

	select {
	case <-state.token:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { state.token <- struct{}{} }()

	if !state.last.IsZero() {
		if wait := interval - time.Since(state.last); wait > 0 {
			s.logger.Debug("rate limit wait",
				zap.String("service", serviceKey),
				zap.Duration("wait", wait))

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	state.last = time.Now()
	return nil
}

func (s *RateLimitService) lookup(serviceKey string) (time.Duration, *serviceState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval, ok := s.intervals[serviceKey]
	if !ok {
		return 0, nil
	}

	state, ok := s.states[serviceKey]
	if !ok {
		state = &serviceState{token: make(chan struct{}, 1)}
		state.token <- struct{}{}
		s.states[serviceKey] = state
	}
	return interval, state
}
