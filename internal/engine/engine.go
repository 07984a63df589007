// Package engine serialises all session work onto a single goroutine.
//
// Transports call the exported request methods from any goroutine; each call
// becomes a task on the Loop, so the registries, binder and dispatcher never
// see concurrent mutation. Work that waits on external systems runs between
// tasks and re-validates state when it resumes.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/spyword/internal/dependencies/clock"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/services/binding"
	"github.com/mcoot/spyword/internal/services/dispatch"
	"github.com/mcoot/spyword/internal/services/player"
	"github.com/mcoot/spyword/internal/services/session"
)

// CreationMirror persists a new session before its creator is told about it
type CreationMirror interface {
	SaveSessionNow(ctx context.Context, session *model.Session) error
}

// Settings exposes the start threshold reported to clients
type Settings interface {
	MinPlayersToStart() int
}

// Config tunes the engine
type Config struct {
	// ReconnectGrace is how long a seated player may stay unbound before
	// being treated as having left. Zero means immediately.
	ReconnectGrace time.Duration
	// QueueSize bounds the number of tasks waiting for the loop
	QueueSize int
}

// DefaultConfig returns the default engine settings
func DefaultConfig() Config {
	return Config{
		ReconnectGrace: 5 * time.Second,
		QueueSize:      256,
	}
}

// SessionView is what a member is told about a session
type SessionView struct {
	Code              model.SessionCode
	HostID            model.PlayerID
	Status            model.SessionStatus
	SpyCount          int
	EffectiveSpyCount int
	MinPlayersToStart int
	Members           []model.MemberView
	Reconnected       bool
}

// Stats is a point-in-time count of live objects
type Stats struct {
	Sessions    int
	Connections int
}

// Engine exposes every request a client connection can make
type Engine struct {
	loop       *Loop
	players    player.RegistryInterface
	controller session.ControllerInterface
	sessions   *session.Registry
	binder     *binding.Binder
	dispatcher *dispatch.Dispatcher
	mirror     CreationMirror
	settings   Settings
	clock      clock.Clock
	cfg        Config
	logger     *slog.Logger

	// owned by the loop
	grace map[model.PlayerID]clock.Timer
}

// New creates an Engine on top of loop
func New(
	loop *Loop,
	players player.RegistryInterface,
	controller *session.Controller,
	binder *binding.Binder,
	dispatcher *dispatch.Dispatcher,
	mirror CreationMirror,
	settings Settings,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		loop:       loop,
		players:    players,
		controller: controller,
		sessions:   controller.Registry(),
		binder:     binder,
		dispatcher: dispatcher,
		mirror:     mirror,
		settings:   settings,
		clock:      clk,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "engine")),
		grace:      make(map[model.PlayerID]clock.Timer),
	}
}

// Loop returns the processing loop
func (e *Engine) Loop() *Loop {
	return e.loop
}

func (e *Engine) boundPlayer(conn model.ConnID) (model.PlayerID, error) {
	id, ok := e.binder.PlayerFor(conn)
	if !ok {
		return "", model.ErrNotRegistered
	}
	return id, nil
}

func (e *Engine) view(ctx context.Context, s *model.Session, reconnected bool) *SessionView {
	return &SessionView{
		Code:              s.Code,
		HostID:            s.HostID,
		Status:            s.Status,
		SpyCount:          s.SpyCount,
		EffectiveSpyCount: session.PreviewSpyCount(s),
		MinPlayersToStart: e.settings.MinPlayersToStart(),
		Members:           e.controller.MemberViews(ctx, s, false),
		Reconnected:       reconnected,
	}
}

// Register binds the connection to a new or existing identity.
// Any earlier binding of either side is discarded, and queued private
// messages for the identity are delivered.
func (e *Engine) Register(ctx context.Context, conn model.ConnID, name string, existingID model.PlayerID) (*model.Player, error) {
	var registered *model.Player
	err := e.loop.Do(ctx, func(ctx context.Context) error {
		p, err := e.players.Register(ctx, name, existingID)
		if err != nil {
			return err
		}
		rebind := e.binder.Bind(conn, p.ID)
		e.stopGrace(p.ID)
		if rebind.PreviousPlayer != "" {
			e.unbound(ctx, rebind.PreviousPlayer)
		}
		if rebind.PreviousConn != "" {
			e.logger.Info("player moved to new connection",
				slog.String("player_id", string(p.ID)),
				slog.String("previous_conn", string(rebind.PreviousConn)),
			)
		}
		e.dispatcher.Flush(p.ID)
		registered = p
		return nil
	})
	return registered, err
}

// CreateSession opens a session hosted by the connection's player. The
// session is written to durable storage before the call returns; if that
// write fails the session is rolled back and a persistence error returned.
func (e *Engine) CreateSession(ctx context.Context, conn model.ConnID, spyCount int) (*SessionView, error) {
	var (
		host     model.PlayerID
		snapshot *model.Session
	)
	err := e.loop.Do(ctx, func(ctx context.Context) error {
		id, err := e.boundPlayer(conn)
		if err != nil {
			return err
		}
		s, err := e.controller.CreateSession(ctx, id, spyCount)
		if err != nil {
			return err
		}
		host, snapshot = id, s.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Off the loop: other requests keep flowing while the write is in flight
	if err := e.mirror.SaveSessionNow(ctx, snapshot); err != nil {
		e.logger.Error("session creation write failed",
			slog.String("session_code", string(snapshot.Code)),
			slog.String("error", err.Error()),
		)
		rollbackCtx := context.WithoutCancel(ctx)
		if rbErr := e.loop.Do(rollbackCtx, func(ctx context.Context) error {
			return e.controller.AbortCreate(ctx, snapshot.Code)
		}); rbErr != nil {
			e.logger.Error("session rollback failed",
				slog.String("session_code", string(snapshot.Code)),
				slog.String("error", rbErr.Error()),
			)
		}
		if errors.Is(err, model.ErrPersistence) {
			return nil, err
		}
		return nil, model.PersistenceError("save session", err)
	}

	var view *SessionView
	err = e.loop.Do(ctx, func(ctx context.Context) error {
		s, err := e.sessions.Find(ctx, snapshot.Code)
		if err != nil {
			return err
		}
		if !s.HasMember(host) {
			return model.ErrNotInSession
		}
		view = e.view(ctx, s, false)
		return nil
	})
	return view, err
}

// JoinSession seats the connection's player, or reconnects them if already seated
func (e *Engine) JoinSession(ctx context.Context, conn model.ConnID, rawCode string) (*SessionView, error) {
	code, err := session.NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	var view *SessionView
	err = e.loop.Do(ctx, func(ctx context.Context) error {
		id, err := e.boundPlayer(conn)
		if err != nil {
			return err
		}
		result, err := e.controller.Join(ctx, id, code)
		if err != nil {
			return err
		}
		view = e.view(ctx, result.Session, result.Reconnected)
		return nil
	})
	return view, err
}

// hostAction runs a host-only transition against the named session
func (e *Engine) hostAction(
	ctx context.Context,
	conn model.ConnID,
	rawCode string,
	action func(ctx context.Context, actor model.PlayerID, code model.SessionCode) error,
) error {
	code, err := session.NormalizeCode(rawCode)
	if err != nil {
		return err
	}
	return e.loop.Do(ctx, func(ctx context.Context) error {
		id, err := e.boundPlayer(conn)
		if err != nil {
			return err
		}
		return action(ctx, id, code)
	})
}

// StartSession assigns roles and begins the round
func (e *Engine) StartSession(ctx context.Context, conn model.ConnID, rawCode string) error {
	return e.hostAction(ctx, conn, rawCode, e.controller.Start)
}

// EndSession finishes the round and reveals it
func (e *Engine) EndSession(ctx context.Context, conn model.ConnID, rawCode string) error {
	return e.hostAction(ctx, conn, rawCode, e.controller.End)
}

// RestartSession returns a finished session to waiting
func (e *Engine) RestartSession(ctx context.Context, conn model.ConnID, rawCode string) error {
	return e.hostAction(ctx, conn, rawCode, e.controller.Restart)
}

// SetSpyCount changes the configured spy count of a waiting session
func (e *Engine) SetSpyCount(ctx context.Context, conn model.ConnID, rawCode string, spyCount int) (*SessionView, error) {
	var view *SessionView
	err := e.hostAction(ctx, conn, rawCode, func(ctx context.Context, actor model.PlayerID, code model.SessionCode) error {
		s, err := e.controller.SetSpyCount(ctx, actor, code, spyCount)
		if err != nil {
			return err
		}
		view = e.view(ctx, s, false)
		return nil
	})
	return view, err
}

// RequestRoleInfo returns the caller's private role for the current round
func (e *Engine) RequestRoleInfo(ctx context.Context, conn model.ConnID) (*model.RoleInfo, error) {
	var info *model.RoleInfo
	err := e.loop.Do(ctx, func(ctx context.Context) error {
		id, err := e.boundPlayer(conn)
		if err != nil {
			return err
		}
		info, err = e.controller.RoleInfo(ctx, id)
		return err
	})
	return info, err
}

// LeaveSession removes the named player, who must be the connection's own player
func (e *Engine) LeaveSession(ctx context.Context, conn model.ConnID, rawCode string, playerID model.PlayerID) error {
	code, err := session.NormalizeCode(rawCode)
	if err != nil {
		return err
	}
	return e.loop.Do(ctx, func(ctx context.Context) error {
		id, err := e.boundPlayer(conn)
		if err != nil {
			return err
		}
		if playerID != "" && playerID != id {
			return model.ErrForbidden
		}
		return e.controller.Leave(ctx, id, code)
	})
}

// Disconnected is called by the transport when a connection closes.
// Only the player's current binding counts; a stale connection is ignored.
func (e *Engine) Disconnected(conn model.ConnID) {
	e.loop.Post(func(ctx context.Context) {
		id, ok := e.binder.Unbind(conn)
		if !ok {
			return
		}
		e.unbound(ctx, id)
	})
}

// unbound handles a player who just lost their binding
func (e *Engine) unbound(ctx context.Context, id model.PlayerID) {
	p, err := e.players.Get(ctx, id)
	if err != nil {
		return
	}
	if !p.InSession() || e.cfg.ReconnectGrace <= 0 {
		e.drop(ctx, id)
		return
	}

	e.stopGrace(id)
	e.grace[id] = e.clock.AfterFunc(e.cfg.ReconnectGrace, func() {
		e.loop.Post(func(ctx context.Context) {
			if _, ok := e.grace[id]; !ok {
				return
			}
			delete(e.grace, id)
			if _, bound := e.binder.ConnFor(id); bound {
				return
			}
			e.drop(ctx, id)
		})
	})
	e.logger.Debug("player unbound, waiting for reconnect",
		slog.String("player_id", string(id)),
		slog.Duration("grace", e.cfg.ReconnectGrace),
	)
}

func (e *Engine) stopGrace(id model.PlayerID) {
	if t, ok := e.grace[id]; ok {
		t.Stop()
		delete(e.grace, id)
	}
}

// drop treats the player as gone: leave any session, then forget the identity
func (e *Engine) drop(ctx context.Context, id model.PlayerID) {
	if err := e.controller.ConnectionLost(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
		e.logger.Error("connection lost handling failed",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
	e.dispatcher.Discard(id)
	if _, err := e.players.Remove(ctx, id); err != nil {
		e.logger.Error("failed to remove player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}

// SessionSummary returns the public view of a session
func (e *Engine) SessionSummary(ctx context.Context, rawCode string) (*SessionView, error) {
	code, err := session.NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	var view *SessionView
	err = e.loop.Do(ctx, func(ctx context.Context) error {
		s, err := e.sessions.Find(ctx, code)
		if err != nil {
			return err
		}
		view = e.view(ctx, s, false)
		return nil
	})
	return view, err
}

// Stats counts live sessions and bound connections
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := e.loop.Do(ctx, func(ctx context.Context) error {
		n, err := e.sessions.Count(ctx)
		if err != nil {
			return err
		}
		stats = Stats{Sessions: n, Connections: e.binder.Count()}
		return nil
	})
	return stats, err
}
