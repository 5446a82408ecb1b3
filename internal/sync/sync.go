// Package sync mirrors the in-memory session store to the remote
// document store. It is opportunistic: the UI never reads through it
// directly, and read failures degrade to empty results while message
// write failures propagate. Losing a drawer refresh is harmless;
// silently dropping unsent messages is not.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roamchat/roam/internal/db"
	"github.com/roamchat/roam/internal/metrics"
	"github.com/roamchat/roam/internal/models"
)

// Store is the slice of the database client the syncer needs.
type Store interface {
	CreateSession(ctx context.Context, title string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	UpdateMessages(ctx context.Context, id string, messages []models.Message) (*models.Session, error)
	UpdateTitle(ctx context.Context, id, title string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Authorizer reports whether a user is signed in. Remote operations
// are gated on it before any network round trip.
type Authorizer interface {
	User() (*models.User, bool)
}

// Syncer pushes session state to the remote store and pulls the
// session list for the drawer.
type Syncer struct {
	store   Store
	auth    Authorizer
	logger  *slog.Logger
	metrics *metrics.Collector
}

// New creates a syncer. The metrics collector may be nil.
func New(store Store, auth Authorizer, logger *slog.Logger, collector *metrics.Collector) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{store: store, auth: auth, logger: logger, metrics: collector}
}

// CreateSession creates a remote session record owned by the current
// user. Returns nil on any failure, missing auth included, and the
// caller must treat nil as "not persisted", not as an error.
func (s *Syncer) CreateSession(ctx context.Context, title string) *models.Session {
	if _, ok := s.auth.User(); !ok {
		s.logger.Debug("skipping remote session create, not authenticated")
		return nil
	}

	start := time.Now()
	created, err := s.store.CreateSession(ctx, title)
	s.record(metrics.OpSyncPush, start)
	if err != nil {
		s.logger.Error("remote session create failed", "title", title, "error", err)
		return nil
	}
	return created
}

// ListSessions returns the user's sessions, most recently updated
// first. Failures degrade to an empty list so the drawer renders
// without persistence.
func (s *Syncer) ListSessions(ctx context.Context) []models.Session {
	if _, ok := s.auth.User(); !ok {
		return []models.Session{}
	}

	start := time.Now()
	sessions, err := s.store.ListSessions(ctx)
	s.record(metrics.OpSyncPull, start)
	if err != nil {
		s.logger.Error("remote session list failed", "error", err)
		return []models.Session{}
	}
	return sessions
}

// UpdateMessages replaces the remote message list. Unlike the read
// paths this propagates failure, including db.ErrNotAuthenticated when
// no user is signed in, so unsent state is never silently lost.
func (s *Syncer) UpdateMessages(ctx context.Context, id string, messages []models.Message) error {
	if _, ok := s.auth.User(); !ok {
		return fmt.Errorf("update messages: %w", db.ErrNotAuthenticated)
	}

	start := time.Now()
	_, err := s.store.UpdateMessages(ctx, id, messages)
	s.record(metrics.OpSyncPush, start)
	if err != nil {
		return fmt.Errorf("update messages: %w", err)
	}
	return nil
}

// UpdateTitle replaces the remote title. Failures are swallowed and
// reported as false.
func (s *Syncer) UpdateTitle(ctx context.Context, id, title string) bool {
	if _, ok := s.auth.User(); !ok {
		return false
	}

	start := time.Now()
	_, err := s.store.UpdateTitle(ctx, id, title)
	s.record(metrics.OpSyncPush, start)
	if err != nil {
		s.logger.Error("remote title update failed", "session", id, "error", err)
		return false
	}
	return true
}

// DeleteSession removes the remote record. Failures are swallowed and
// reported as false; the local delete has already happened.
func (s *Syncer) DeleteSession(ctx context.Context, id string) bool {
	if _, ok := s.auth.User(); !ok {
		return false
	}

	start := time.Now()
	err := s.store.DeleteSession(ctx, id)
	s.record(metrics.OpSyncPush, start)
	if err != nil {
		s.logger.Error("remote session delete failed", "session", id, "error", err)
		return false
	}
	return true
}

func (s *Syncer) record(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordTiming(op, time.Since(start))
	}
}
