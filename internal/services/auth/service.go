// Package auth guards the admin API with a single shared secret.
package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/spyword/internal/model"
)

// Errors
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid admin secret", model.ErrAuthorization)
	ErrAdminDisabled      = fmt.Errorf("%w: admin access is not configured", model.ErrAuthorization)
)

// Service checks admin secrets against a bcrypt hash.
// With no hash configured every check fails.
type Service struct {
	hash   []byte
	logger *slog.Logger
}

// New creates a Service for the given bcrypt hash, which may be empty
func New(secretHash string, logger *slog.Logger) (*Service, error) {
	s := &Service{logger: logger.With(slog.String("component", "auth"))}
	if secretHash == "" {
		s.logger.Warn("no admin secret configured, admin API disabled")
		return s, nil
	}
	if _, err := bcrypt.Cost([]byte(secretHash)); err != nil {
		return nil, fmt.Errorf("invalid admin secret hash: %w", err)
	}
	s.hash = []byte(secretHash)
	return s, nil
}

// Enabled reports whether an admin secret is configured
func (s *Service) Enabled() bool {
	return len(s.hash) > 0
}

// Verify checks a presented secret
func (s *Service) Verify(secret string) error {
	if !s.Enabled() {
		return ErrAdminDisabled
	}
	if secret == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(secret)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error("admin secret check failed", slog.String("error", err.Error()))
		}
		return ErrInvalidCredentials
	}
	return nil
}

// HashSecret returns the bcrypt hash to configure for a secret
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: secret must not be empty", model.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
