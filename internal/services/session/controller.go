package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/spyword/internal/dependencies/clock"
	"github.com/mcoot/spyword/internal/dependencies/random"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/services/roles"
)

// HostLeftMessage is sent to the remaining members when the host departs
const HostLeftMessage = "The host has left the session"

// Players is the subset of the player registry the controller needs
type Players interface {
	Get(ctx context.Context, id model.PlayerID) (*model.Player, error)
	SetCurrentSession(ctx context.Context, id model.PlayerID, code model.SessionCode) error
}

// Dispatcher delivers events to session members
type Dispatcher interface {
	BroadcastToSession(session *model.Session, typ model.EventType, payload any)
	SendToPlayer(session *model.Session, player model.PlayerID, typ model.EventType, payload any)
	Discard(players ...model.PlayerID)
}

// Settings supplies the gameplay settings read at start
type Settings interface {
	MinPlayersToStart() int
	ShowHintToRegulars() bool
}

// Words supplies the word list and fresh hints
type Words interface {
	Entries() []model.WordEntry
	HintFor(word string) (string, bool)
}

// Config tunes controller timing
type Config struct {
	// RoleRedeliveryDelay is how long after start roles are sent a second time,
	// covering clients whose listeners were not ready for the first delivery
	RoleRedeliveryDelay time.Duration
}

// DefaultConfig returns the default controller settings
func DefaultConfig() Config {
	return Config{RoleRedeliveryDelay: 500 * time.Millisecond}
}

// Controller is the session state machine: waiting -> playing -> finished -> waiting.
// It is not safe for concurrent use; the engine calls it from a single goroutine.
type Controller struct {
	sessions   *Registry
	players    Players
	dispatcher Dispatcher
	settings   Settings
	words      Words
	random     random.Random
	clock      clock.Clock
	scheduler  Scheduler
	cfg        Config
	logger     *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	sessions *Registry,
	players Players,
	dispatcher Dispatcher,
	settings Settings,
	words Words,
	random random.Random,
	clock clock.Clock,
	scheduler Scheduler,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		sessions:   sessions,
		players:    players,
		dispatcher: dispatcher,
		settings:   settings,
		words:      words,
		random:     random,
		clock:      clock,
		scheduler:  scheduler,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "session_controller")),
	}
}

// Registry returns the session registry
func (c *Controller) Registry() *Registry {
	return c.sessions
}

// JoinResult is the outcome of a join
type JoinResult struct {
	Session     *model.Session
	Reconnected bool
}

// CreateSession opens a new session hosted by the player.
// A host already seated elsewhere leaves that session first.
func (c *Controller) CreateSession(ctx context.Context, host model.PlayerID, spyCount int) (*model.Session, error) {
	player, err := c.players.Get(ctx, host)
	if err != nil {
		return nil, err
	}
	if player.InSession() {
		if err := c.leave(ctx, player.CurrentSession, host); err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	session, err := c.sessions.Create(ctx, host, spyCount)
	if err != nil {
		return nil, err
	}
	if err := c.players.SetCurrentSession(ctx, host, session.Code); err != nil {
		return nil, err
	}
	return session, nil
}

// AbortCreate rolls back a session whose creation could not be persisted.
// Anyone who joined in the meantime is told the session is gone.
func (c *Controller) AbortCreate(ctx context.Context, code model.SessionCode) error {
	session, err := c.sessions.Find(ctx, code)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, member := range session.Members {
		c.clearSeat(ctx, member, code)
	}
	if err := c.sessions.Remove(ctx, code); err != nil {
		return err
	}

	session.Status = model.StatusFinished
	c.dispatcher.BroadcastToSession(session, model.EventHostLeft, model.HostLeftPayload{
		Status:  model.StatusFinished,
		Message: "The session could not be saved",
	})
	c.logger.Warn("session creation rolled back", slog.String("session_code", string(code)))
	return nil
}

// Join seats the player in a waiting session, or reconnects an existing member
func (c *Controller) Join(ctx context.Context, playerID model.PlayerID, code model.SessionCode) (*JoinResult, error) {
	session, err := c.sessions.Find(ctx, code)
	if err != nil {
		return nil, err
	}

	if session.HasMember(playerID) {
		return c.reconnect(ctx, session, playerID)
	}
	if session.Status != model.StatusWaiting {
		return nil, model.ErrAlreadyStarted
	}

	player, err := c.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.InSession() && player.CurrentSession != code {
		if err := c.leave(ctx, player.CurrentSession, playerID); err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	session.Members = append(session.Members, playerID)
	if err := c.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	if err := c.players.SetCurrentSession(ctx, playerID, code); err != nil {
		return nil, err
	}

	c.dispatcher.BroadcastToSession(session, model.EventMemberJoined, model.MemberJoinedPayload{
		Members: c.MemberViews(ctx, session, false),
	})

	c.logger.Info("player joined session",
		slog.String("session_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Int("members", len(session.Members)),
	)
	return &JoinResult{Session: session}, nil
}

// Start assigns roles and moves a waiting session to playing.
// Starting a session that is already playing is a no-op.
func (c *Controller) Start(ctx context.Context, actor model.PlayerID, code model.SessionCode) error {
	session, err := c.sessions.Find(ctx, code)
	if err != nil {
		return err
	}
	if !session.IsHost(actor) {
		return model.ErrNotHost
	}

	switch session.Status {
	case model.StatusPlaying:
		return nil
	case model.StatusFinished:
		return model.ErrNotWaiting
	}

	if len(session.Members) < c.settings.MinPlayersToStart() {
		return model.ErrInsufficientPlayers
	}

	assignment, err := roles.Assign(c.random, session.Members, session.SpyCount, c.words.Entries())
	if err != nil {
		return err
	}

	session.Status = model.StatusPlaying
	session.Roles = assignment.Roles
	session.EffectiveSpyCount = assignment.EffectiveSpyCount
	session.SecretWord = assignment.Word
	session.SecretHint = assignment.Hint
	session.HintToRegulars = c.settings.ShowHintToRegulars()
	session.StartedAt = c.clock.Now()
	if err := c.sessions.Save(ctx, session); err != nil {
		return err
	}

	c.dispatcher.BroadcastToSession(session, model.EventSessionStarted, model.SessionStartedPayload{})
	c.deliverRoles(session)
	c.scheduler.After(code, c.cfg.RoleRedeliveryDelay, func() {
		c.redeliverRoles(context.Background(), code)
	})

	c.logger.Info("session started",
		slog.String("session_code", string(code)),
		slog.Int("members", len(session.Members)),
		slog.Int("spy_count", session.SpyCount),
		slog.Int("effective_spy_count", session.EffectiveSpyCount),
	)
	return nil
}

func (c *Controller) deliverRoles(session *model.Session) {
	for _, member := range session.Members {
		role, ok := session.Roles[member]
		if !ok {
			continue
		}
		info := roles.InfoFor(role, session.SecretWord, session.SecretHint, session.HintToRegulars)
		c.dispatcher.SendToPlayer(session, member, model.EventRoleAssigned, info)
	}
}

// redeliverRoles repeats the role delivery if the round is still on.
// Sessions that have ended, restarted or vanished are skipped silently.
func (c *Controller) redeliverRoles(ctx context.Context, code model.SessionCode) {
	session, err := c.sessions.Find(ctx, code)
	if err != nil {
		return
	}
	if session.Status != model.StatusPlaying {
		return
	}
	c.deliverRoles(session)
}

// End moves a playing session to finished and reveals the round
func (c *Controller) End(ctx context.Context, actor model.PlayerID, code model.SessionCode) error {
	session, err := c.sessions.Find(ctx, code)
	if err != nil {
		return err
	}
	if !session.IsHost(actor) {
		return model.ErrNotHost
	}

	switch session.Status {
	case model.StatusWaiting:
		return model.ErrNotPlaying
	case model.StatusFinished:
		return nil
	}

	session.Status = model.StatusFinished
	if err := c.sessions.Save(ctx, session); err != nil {
		return err
	}
	c.scheduler.Cancel(code)
	c.dispatcher.Discard(session.Members...)

	c.dispatcher.BroadcastToSession(session, model.EventSessionEnded, model.SessionEndedPayload{
		Status:  session.Status,
		Word:    session.SecretWord,
		Hint:    session.SecretHint,
		Members: c.MemberViews(ctx, session, true),
	})

	c.logger.Info("session ended", slog.String("session_code", string(code)))
	return nil
}

// Restart returns a finished session to waiting, clearing the round
func (c *Controller) Restart(ctx context.Context, actor model.PlayerID, code model.SessionCode) error {
	session, err := c.sessions.Find(ctx, code)
	if err != nil {
		return err
	}
	if !session.IsHost(actor) {
		return model.ErrNotHost
	}

	switch session.Status {
	case model.StatusWaiting:
		return nil
	case model.StatusPlaying:
		return model.ErrNotFinished
	}

	session.ResetRound()
	session.Status = model.StatusWaiting
	if err := c.sessions.Save(ctx, session); err != nil {
		return err
	}
	c.dispatcher.Discard(session.Members...)

	c.dispatcher.BroadcastToSession(session, model.EventSessionRestarted, model.SessionRestartedPayload{
		Status:  session.Status,
		Members: c.MemberViews(ctx, session, false),
	})

	c.logger.Info("session restarted", slog.String("session_code", string(code)))
	return nil
}

// SetSpyCount changes the configured spy count of a waiting session
func (c *Controller) SetSpyCount(ctx context.Context, actor model.PlayerID, code model.SessionCode, spyCount int) (*model.Session, error) {
	session, err := c.sessions.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if !session.IsHost(actor) {
		return nil, model.ErrNotHost
	}
	if session.Status != model.StatusWaiting {
		return nil, model.ErrNotWaiting
	}

	session.SpyCount = model.ClampSpyCount(spyCount)
	if err := c.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	c.dispatcher.BroadcastToSession(session, model.EventSpyCountChanged, model.SpyCountChangedPayload{
		SpyCount:          session.SpyCount,
		EffectiveSpyCount: PreviewSpyCount(session),
	})
	return session, nil
}

// PreviewSpyCount is the effective spy count a session has or would get if started now
func PreviewSpyCount(session *model.Session) int {
	if session.Status != model.StatusWaiting && session.EffectiveSpyCount > 0 {
		return session.EffectiveSpyCount
	}
	return roles.EffectiveSpyCount(session.SpyCount, len(session.Members))
}

// Leave removes the player from the session
func (c *Controller) Leave(ctx context.Context, playerID model.PlayerID, code model.SessionCode) error {
	return c.leave(ctx, code, playerID)
}

// ConnectionLost handles a player whose connection went away for good.
// It has the same effect as leaving their current session.
func (c *Controller) ConnectionLost(ctx context.Context, playerID model.PlayerID) error {
	player, err := c.players.Get(ctx, playerID)
	if err != nil {
		return err
	}
	if !player.InSession() {
		return nil
	}
	c.logger.Info("connection lost", slog.String("player_id", string(playerID)))
	return c.leave(ctx, player.CurrentSession, playerID)
}

func (c *Controller) leave(ctx context.Context, code model.SessionCode, playerID model.PlayerID) error {
	session, err := c.sessions.Find(ctx, code)
	if errors.Is(err, model.ErrSessionNotFound) {
		c.clearSeat(ctx, playerID, code)
		return err
	}
	if err != nil {
		return err
	}

	wasHost := session.IsHost(playerID)
	if !session.RemoveMember(playerID) {
		c.clearSeat(ctx, playerID, code)
		return model.ErrNotInSession
	}
	c.clearSeat(ctx, playerID, code)
	c.dispatcher.Discard(playerID)

	if len(session.Members) == 0 {
		return c.sessions.Remove(ctx, code)
	}

	if wasHost {
		session.HostID = ""
		session.Status = model.StatusFinished
		if err := c.sessions.Save(ctx, session); err != nil {
			return err
		}
		c.scheduler.Cancel(code)
		c.dispatcher.Discard(session.Members...)
		c.dispatcher.BroadcastToSession(session, model.EventHostLeft, model.HostLeftPayload{
			Status:  session.Status,
			Message: HostLeftMessage,
		})
		c.logger.Info("host left session",
			slog.String("session_code", string(code)),
			slog.String("player_id", string(playerID)),
		)
		return nil
	}

	if err := c.sessions.Save(ctx, session); err != nil {
		return err
	}
	c.dispatcher.BroadcastToSession(session, model.EventMemberLeft, model.MemberLeftPayload{
		PlayerID: playerID,
		Members:  c.MemberViews(ctx, session, false),
	})
	c.logger.Info("player left session",
		slog.String("session_code", string(code)),
		slog.String("player_id", string(playerID)),
	)
	return nil
}

// clearSeat forgets the player's session if it still points at code
func (c *Controller) clearSeat(ctx context.Context, playerID model.PlayerID, code model.SessionCode) {
	player, err := c.players.Get(ctx, playerID)
	if err != nil || player.CurrentSession != code {
		return
	}
	if err := c.players.SetCurrentSession(ctx, playerID, ""); err != nil {
		c.logger.Error("failed to clear player session",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
	}
}

// MemberViews renders the member list in join order.
// Roles are only included when withRoles is set.
func (c *Controller) MemberViews(ctx context.Context, session *model.Session, withRoles bool) []model.MemberView {
	views := make([]model.MemberView, 0, len(session.Members))
	for _, id := range session.Members {
		view := model.MemberView{ID: id, IsHost: session.IsHost(id)}
		if p, err := c.players.Get(ctx, id); err == nil {
			view.Name = p.DisplayName
		}
		if withRoles {
			view.Role = session.Roles[id]
		}
		views = append(views, view)
	}
	return views
}

// ControllerInterface is the state machine contract used by the engine
type ControllerInterface interface {
	CreateSession(ctx context.Context, host model.PlayerID, spyCount int) (*model.Session, error)
	AbortCreate(ctx context.Context, code model.SessionCode) error
	Join(ctx context.Context, playerID model.PlayerID, code model.SessionCode) (*JoinResult, error)
	Start(ctx context.Context, actor model.PlayerID, code model.SessionCode) error
	End(ctx context.Context, actor model.PlayerID, code model.SessionCode) error
	Restart(ctx context.Context, actor model.PlayerID, code model.SessionCode) error
	SetSpyCount(ctx context.Context, actor model.PlayerID, code model.SessionCode, spyCount int) (*model.Session, error)
	Leave(ctx context.Context, playerID model.PlayerID, code model.SessionCode) error
	ConnectionLost(ctx context.Context, playerID model.PlayerID) error
	RoleInfo(ctx context.Context, playerID model.PlayerID) (*model.RoleInfo, error)
	MemberViews(ctx context.Context, session *model.Session, withRoles bool) []model.MemberView
}

var _ ControllerInterface = (*Controller)(nil)
