package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/spyword/internal/dependencies/clock"
	"github.com/mcoot/spyword/internal/dependencies/random"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/storage"
)

const (
	// CodeLength is the length of generated session codes
	CodeLength = 6
	// CodeAlphabet is the characters used in session codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 100
)

var errCodeSpaceExhausted = errors.New("could not generate a unique session code")

// Mirror receives best-effort copies of session changes
type Mirror interface {
	SaveSession(session *model.Session)
	DeleteSession(code model.SessionCode)
}

// Scheduler runs deferred work bound to a session's lifetime
type Scheduler interface {
	After(code model.SessionCode, delay time.Duration, fn func())
	Cancel(code model.SessionCode)
}

// Registry owns live sessions
type Registry struct {
	storage   storage.Storage
	clock     clock.Clock
	random    random.Random
	mirror    Mirror
	scheduler Scheduler
	logger    *slog.Logger
}

// NewRegistry creates a new session Registry
func NewRegistry(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	mirror Mirror,
	scheduler Scheduler,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		storage:   storage,
		clock:     clock,
		random:    random,
		mirror:    mirror,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "session_registry")),
	}
}

// NormalizeCode upper-cases a user-supplied code and checks it against the code alphabet
func NormalizeCode(raw string) (model.SessionCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != CodeLength {
		return "", model.ErrInvalidSessionCode
	}
	for _, c := range code {
		if !strings.ContainsRune(CodeAlphabet, c) {
			return "", model.ErrInvalidSessionCode
		}
	}
	return model.SessionCode(code), nil
}

// Create seats the host in a new waiting session.
// Out-of-range spy counts fall back to the default.
func (r *Registry) Create(ctx context.Context, host model.PlayerID, requestedSpyCount int) (*model.Session, error) {
	code, err := r.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	session := &model.Session{
		Code:      code,
		HostID:    host,
		Members:   []model.PlayerID{host},
		Status:    model.StatusWaiting,
		SpyCount:  model.ClampSpyCount(requestedSpyCount),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	r.logger.Info("session created",
		slog.String("session_code", string(code)),
		slog.String("host_id", string(host)),
		slog.Int("spy_count", session.SpyCount),
	)
	return session, nil
}

func (r *Registry) generateCode(ctx context.Context) (model.SessionCode, error) {
	for range maxCodeAttempts {
		code := model.SessionCode(r.random.String(CodeLength, CodeAlphabet))
		if len(code) != CodeLength {
			continue
		}
		exists, err := r.storage.SessionExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errCodeSpaceExhausted
}

// Find resolves a live session by code
func (r *Registry) Find(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	return r.storage.GetSession(ctx, code)
}

// Save stores the session and mirrors it
func (r *Registry) Save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = r.clock.Now()
	if err := r.storage.SaveSession(ctx, session); err != nil {
		return err
	}
	r.mirror.SaveSession(session)
	return nil
}

// Remove destroys the session and cancels any work scheduled for it
func (r *Registry) Remove(ctx context.Context, code model.SessionCode) error {
	r.scheduler.Cancel(code)
	if err := r.storage.DeleteSession(ctx, code); err != nil {
		return err
	}
	r.mirror.DeleteSession(code)
	r.logger.Info("session removed", slog.String("session_code", string(code)))
	return nil
}

// Count returns the number of live sessions
func (r *Registry) Count(ctx context.Context) (int, error) {
	return r.storage.CountSessions(ctx)
}
