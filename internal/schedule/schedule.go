// Package schedule arms one-shot refresh timers keyed by widget id.
package schedule

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// FireFunc is called when a widget's timer expires. It runs on its own
// goroutine; ctx is cancelled when the scheduler stops.
type FireFunc func(ctx context.Context, widgetID int)

type pending struct {
	timer *time.Timer
	due   time.Time
}

// Scheduler holds at most one pending timer per widget. Scheduling a widget
// that already has a pending timer replaces it.
type Scheduler struct {
	fire FireFunc

	mu      sync.Mutex
	timers  map[int]*pending
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler that calls fire on expiry.
func New(fire FireFunc) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		fire:   fire,
		timers: make(map[int]*pending),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule arms widgetID to fire after d and returns the due time. It
// returns the zero time once the scheduler is stopped.
func (s *Scheduler) Schedule(widgetID int, d time.Duration) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return time.Time{}
	}
	if old, ok := s.timers[widgetID]; ok {
		old.timer.Stop()
	}

	p := &pending{due: time.Now().Add(d)}
	p.timer = time.AfterFunc(d, func() { s.expire(widgetID, p) })
	s.timers[widgetID] = p
	return p.due
}

func (s *Scheduler) expire(widgetID int, p *pending) {
	s.mu.Lock()
	// A replaced or cancelled timer that was already running loses here.
	if s.stopped || s.timers[widgetID] != p {
		s.mu.Unlock()
		return
	}
	delete(s.timers, widgetID)
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	s.fire(s.ctx, widgetID)
}

// Cancel disarms widgetID's timer and reports whether one was pending.
func (s *Scheduler) Cancel(widgetID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[widgetID]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.timers, widgetID)
	return true
}

// Due returns when widgetID's timer fires.
func (s *Scheduler) Due(widgetID int) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[widgetID]
	if !ok {
		return time.Time{}, false
	}
	return p.due, true
}

// Pending returns the ids with an armed timer, in ascending order.
func (s *Scheduler) Pending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.timers))
}

// Stop disarms every timer and waits for running callbacks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
