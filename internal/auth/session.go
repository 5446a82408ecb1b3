// Package auth maintains the process-wide authentication state: the
// current user, a loading flag for the initial token check, and
// sign-in / sign-up / sign-out wrapping exactly one provider call each.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/roamchat/roam/internal/db"
	"github.com/roamchat/roam/internal/models"
)

// State is the authentication lifecycle state.
type State int

const (
	// StateLoading covers the initial check of the persisted token at
	// process start, and nothing else.
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is one observed authentication state.
type Snapshot struct {
	State State
	User  *models.User
}

// Session tracks the authenticated user for the process lifetime.
// Transitions happen only through Restore, SignIn, SignUp and SignOut;
// subscribers observe every transition in order.
type Session struct {
	client    *db.Client
	tokenFile string
	logger    *slog.Logger

	mu       sync.RWMutex
	state    State
	user     *models.User
	restored bool
	subs     []chan Snapshot
}

// NewSession creates an auth session in the loading state. Call
// Restore once at startup to resolve it.
func NewSession(client *db.Client, tokenFile string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client:    client,
		tokenFile: tokenFile,
		logger:    logger,
		state:     StateLoading,
	}
}

// Restore validates the persisted token, if any, and resolves the
// loading state. It fires the first subscriber notification exactly
// once; calling it again is a no-op.
func (s *Session) Restore(ctx context.Context) {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return
	}
	s.restored = true
	s.mu.Unlock()

	token, err := os.ReadFile(s.tokenFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read token file", "file", s.tokenFile, "error", err)
		}
		s.transition(StateUnauthenticated, nil)
		return
	}

	if err := s.client.Authenticate(ctx, strings.TrimSpace(string(token))); err != nil {
		// Expired or revoked token: drop it and start signed out.
		s.logger.Info("persisted token rejected", "error", err)
		s.discardToken()
		s.transition(StateUnauthenticated, nil)
		return
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("token accepted but user lookup failed", "error", err)
		s.discardToken()
		s.transition(StateUnauthenticated, nil)
		return
	}

	s.logger.Info("restored auth session", "user", models.MustRecordIDString(user.ID))
	s.transition(StateAuthenticated, user)
}

// SignIn authenticates with email and password. On success the current
// user is set before returning; on failure the provider error is mapped
// to a fixed user-facing message and the cause is logged.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	token, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Error("sign-in failed", "email", email, "error", err)
		return mapProviderError(err)
	}

	return s.completeAuth(ctx, token)
}

// SignUp registers a new account with a display name and signs it in.
func (s *Session) SignUp(ctx context.Context, email, password, name string) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}

	token, err := s.client.SignUp(ctx, email, password, name)
	if err != nil {
		s.logger.Error("sign-up failed", "email", email, "error", err)
		return mapProviderError(err)
	}

	return s.completeAuth(ctx, token)
}

// completeAuth persists the token, resolves the user record and flips
// the state to authenticated.
func (s *Session) completeAuth(ctx context.Context, token string) error {
	s.persistToken(token)

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.logger.Error("user lookup after auth failed", "error", err)
		return ErrAuthFailed
	}

	s.transition(StateAuthenticated, user)
	return nil
}

// SignOut invalidates the provider session and clears local state.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.client.Invalidate(ctx); err != nil {
		s.logger.Error("sign-out failed", "error", err)
		return ErrSignOutFailed
	}

	s.discardToken()
	s.transition(StateUnauthenticated, nil)
	return nil
}

// Current returns the present snapshot.
func (s *Session) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, User: s.user}
}

// User returns the authenticated user, or false.
func (s *Session) User() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == StateAuthenticated
}

// Subscribe returns a channel that receives every subsequent state
// transition. The subscription lives for the process lifetime; slow
// consumers miss intermediate states rather than blocking transitions.
func (s *Session) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 4)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// transition replaces the state and notifies subscribers.
func (s *Session) transition(state State, user *models.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	subs := make([]chan Snapshot, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	snap := Snapshot{State: state, User: user}
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) persistToken(token string) {
	if err := os.MkdirAll(filepath.Dir(s.tokenFile), 0700); err != nil {
		s.logger.Warn("failed to create token directory", "error", err)
		return
	}
	if err := os.WriteFile(s.tokenFile, []byte(token), 0600); err != nil {
		s.logger.Warn("failed to persist token", "file", s.tokenFile, "error", err)
	}
}

func (s *Session) discardToken() {
	if err := os.Remove(s.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove token file", "file", s.tokenFile, "error", err)
	}
}
