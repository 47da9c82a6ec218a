// Package auth manages the per-session account profile. The bearer token is
// supplied by an external authentication collaborator; this package only
// exchanges it for a profile and holds the result.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cryptophy/lottod/internal/domain"
)

// ProfileSource exchanges a bearer token for an account profile.
type ProfileSource interface {
	GetProfile(ctx context.Context, token string) (domain.AccountProfile, error)
}

// Session holds the authenticated profile for the lifetime of the process.
// The profile is created at most once and immutable thereafter; a failed
// exchange leaves the session unauthenticated and dependent views blocked,
// never crashed.
type Session struct {
	source ProfileSource
	logger *slog.Logger

	mu      sync.RWMutex
	profile *domain.AccountProfile
}

// NewSession creates an unauthenticated session.
func NewSession(source ProfileSource, logger *slog.Logger) *Session {
	return &Session{
		source: source,
		logger: logger.With(slog.String("component", "session")),
	}
}

// Authenticate exchanges the token for a profile. Once a profile exists the
// call is a no-op; the identity of a session never changes.
func (s *Session) Authenticate(ctx context.Context, token string) error {
	s.mu.RLock()
	already := s.profile != nil
	s.mu.RUnlock()
	if already {
		return nil
	}

	profile, err := s.source.GetProfile(ctx, token)
	if err != nil {
		s.logger.WarnContext(ctx, "profile exchange failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("auth: exchange token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		s.profile = &profile
		s.logger.InfoContext(ctx, "session authenticated",
			slog.String("user_id", profile.UserID),
			slog.String("wallet", profile.Wallet),
		)
	}
	return nil
}

// Profile returns a copy of the profile and whether one exists.
func (s *Session) Profile() (domain.AccountProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return domain.AccountProfile{}, false
	}
	return *s.profile, true
}

// Authenticated reports whether the handshake has completed.
func (s *Session) Authenticated() bool {
	_, ok := s.Profile()
	return ok
}
