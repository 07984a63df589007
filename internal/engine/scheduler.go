package engine

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/spyword/internal/dependencies/clock"
	"github.com/mcoot/spyword/internal/model"
)

// Scheduler runs deferred session work back on the engine loop.
// Everything scheduled for a session is cancelled with it.
type Scheduler struct {
	clock clock.Clock
	post  func(fn func(ctx context.Context))

	mu      sync.Mutex
	nextID  uint64
	pending map[model.SessionCode]map[uint64]clock.Timer
}

// NewScheduler creates a Scheduler that posts through post, usually Engine.Post
func NewScheduler(clk clock.Clock, post func(fn func(ctx context.Context))) *Scheduler {
	return &Scheduler{
		clock:   clk,
		post:    post,
		pending: make(map[model.SessionCode]map[uint64]clock.Timer),
	}
}

// After runs fn on the loop once delay has passed, unless the session's work is cancelled first
func (s *Scheduler) After(code model.SessionCode, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	timer := s.clock.AfterFunc(delay, func() {
		s.post(func(context.Context) {
			if s.take(code, id) {
				fn()
			}
		})
	})

	if s.pending[code] == nil {
		s.pending[code] = make(map[uint64]clock.Timer)
	}
	s.pending[code][id] = timer
}

// take reports whether the task is still live and forgets it
func (s *Scheduler) take(code model.SessionCode, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, ok := s.pending[code]
	if !ok {
		return false
	}
	if _, ok := tasks[id]; !ok {
		return false
	}
	delete(tasks, id)
	if len(tasks) == 0 {
		delete(s.pending, code)
	}
	return true
}

// Cancel stops every task pending for the session
func (s *Scheduler) Cancel(code model.SessionCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.pending[code] {
		t.Stop()
	}
	delete(s.pending, code)
}

// Pending returns the number of live tasks for the session
func (s *Scheduler) Pending(code model.SessionCode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[code])
}
