package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrStopped is returned for work submitted after the loop has exited
var ErrStopped = errors.New("engine stopped")

type task func(ctx context.Context)

// Loop runs submitted tasks one at a time on a single goroutine
type Loop struct {
	tasks  chan task
	done   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a Loop with room for queueSize waiting tasks
func NewLoop(queueSize int, logger *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultConfig().QueueSize
	}
	return &Loop{
		tasks:  make(chan task, queueSize),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "engine_loop")),
	}
}

// Run processes tasks until ctx is cancelled
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	l.logger.Info("engine loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("engine loop stopped")
			return
		case t := <-l.tasks:
			l.runTask(ctx, t)
		}
	}
}

func (l *Loop) runTask(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in engine task", slog.Any("panic", r))
		}
	}()
	t(ctx)
}

// Done is closed once the loop has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do runs fn on the loop and waits for its result
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	t := func(loopCtx context.Context) {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				l.logger.Error("panic in engine request", slog.Any("panic", r))
			}
			result <- err
		}()
		err = fn(loopCtx)
	}

	select {
	case l.tasks <- t:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		// The loop may have run the task just before exiting
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn on the loop without waiting. Work posted after the loop
// has exited is dropped.
func (l *Loop) Post(fn func(ctx context.Context)) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}
