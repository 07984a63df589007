package mocks

import (
	"sort"
	"time"

	"github.com/mcoot/spyword/internal/model"
)

// ScheduledTask is a task captured by ManualScheduler
type ScheduledTask struct {
	Session model.SessionCode
	Delay   time.Duration
	Fn      func()
}

// ManualScheduler records scheduled tasks and runs them only when told to
type ManualScheduler struct {
	Tasks []ScheduledTask
}

// NewManualScheduler creates an empty ManualScheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After records fn to be run for the session after delay
func (s *ManualScheduler) After(code model.SessionCode, delay time.Duration, fn func()) {
	s.Tasks = append(s.Tasks, ScheduledTask{Session: code, Delay: delay, Fn: fn})
}

// Cancel drops every pending task for the session
func (s *ManualScheduler) Cancel(code model.SessionCode) {
	kept := s.Tasks[:0]
	for _, t := range s.Tasks {
		if t.Session != code {
			kept = append(kept, t)
		}
	}
	s.Tasks = kept
}

// Pending returns the number of tasks waiting to run
func (s *ManualScheduler) Pending() int {
	return len(s.Tasks)
}

// RunAll runs pending tasks in delay order and clears them.
// Tasks scheduled while running are kept for the next call.
func (s *ManualScheduler) RunAll() {
	tasks := s.Tasks
	s.Tasks = nil
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Delay < tasks[j].Delay })
	for _, t := range tasks {
		t.Fn()
	}
}
