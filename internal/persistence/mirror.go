package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/spyword/internal/model"
)

// MirrorConfig tunes the asynchronous write queue
type MirrorConfig struct {
	QueueSize    int
	WriteTimeout time.Duration
}

// DefaultMirrorConfig returns the default queue settings
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		QueueSize:    256,
		WriteTimeout: 5 * time.Second,
	}
}

// ErrMirrorClosed is returned by synchronous writes submitted after Close
var ErrMirrorClosed = errors.New("persistence mirror closed")

type mirrorOp struct {
	name string
	attr slog.Attr
	fn   func(ctx context.Context) error
	// result receives the outcome of a synchronous write; nil for queued writes
	result chan error
}

// Mirror applies best-effort writes to a Store from a single worker goroutine.
// Writes are applied in submission order. Failures of queued writes are
// logged; only SaveSessionNow reports them back.
type Mirror struct {
	store  Store
	cfg    MirrorConfig
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan mirrorOp
	done   chan struct{}
}

// NewMirror creates a Mirror and starts its worker
func NewMirror(store Store, cfg MirrorConfig, logger *slog.Logger) *Mirror {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultMirrorConfig().QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultMirrorConfig().WriteTimeout
	}
	m := &Mirror{
		store:  store,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "persistence_mirror")),
		queue:  make(chan mirrorOp, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Mirror) run() {
	defer close(m.done)
	for op := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.WriteTimeout)
		err := op.fn(ctx)
		cancel()
		if op.result != nil {
			op.result <- err
			continue
		}
		if err != nil {
			m.logger.Error("mirror write failed",
				slog.String("op", op.name),
				op.attr,
				slog.String("error", err.Error()),
			)
		}
	}
}

func (m *Mirror) enqueue(op mirrorOp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- op:
	default:
		m.logger.Warn("mirror queue full, dropping write",
			slog.String("op", op.name),
			op.attr,
		)
	}
}

// SaveSession queues a snapshot of the session
func (m *Mirror) SaveSession(session *model.Session) {
	snapshot := session.Clone()
	m.enqueue(mirrorOp{
		name: "save_session",
		attr: slog.String("session_code", string(snapshot.Code)),
		fn:   func(ctx context.Context) error { return m.store.SaveSession(ctx, snapshot) },
	})
}

// DeleteSession queues removal of the session
func (m *Mirror) DeleteSession(code model.SessionCode) {
	m.enqueue(mirrorOp{
		name: "delete_session",
		attr: slog.String("session_code", string(code)),
		fn:   func(ctx context.Context) error { return m.store.DeleteSession(ctx, code) },
	})
}

// SavePlayer queues a snapshot of the player
func (m *Mirror) SavePlayer(player *model.Player) {
	snapshot := *player
	m.enqueue(mirrorOp{
		name: "save_player",
		attr: slog.String("player_id", string(snapshot.ID)),
		fn:   func(ctx context.Context) error { return m.store.SavePlayer(ctx, &snapshot) },
	})
}

// DeletePlayer queues removal of the player
func (m *Mirror) DeletePlayer(id model.PlayerID) {
	m.enqueue(mirrorOp{
		name: "delete_player",
		attr: slog.String("player_id", string(id)),
		fn:   func(ctx context.Context) error { return m.store.DeletePlayer(ctx, id) },
	})
}

// SaveSessionNow writes the session and waits for the result. The write joins
// the same queue as the asynchronous ones, so it cannot overtake or be
// overtaken by them. It must not be called from the engine goroutine.
func (m *Mirror) SaveSessionNow(ctx context.Context, session *model.Session) error {
	snapshot := session.Clone()
	op := mirrorOp{
		name:   "save_session_now",
		attr:   slog.String("session_code", string(snapshot.Code)),
		fn:     func(ctx context.Context) error { return m.store.SaveSession(ctx, snapshot) },
		result: make(chan error, 1),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMirrorClosed
	}
	select {
	case m.queue <- op:
		m.mu.Unlock()
	case <-ctx.Done():
		m.mu.Unlock()
		return ctx.Err()
	}

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes, drains the queue and waits for the worker
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()
	<-m.done
}
