// Package session holds the in-memory session store the UI reads from.
// The remote document store mirrors this state but is never the
// authority the UI consults directly.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roamchat/roam/internal/models"
)

// ErrNotFound indicates the named session is not in the store. Callers
// that only need best-effort semantics may ignore it; it exists so they
// can tell "already empty" from "session vanished".
var ErrNotFound = errors.New("session not found")

// Session is a titled, ordered conversation held in memory.
type Session struct {
	ID        string
	Title     string
	Messages  []models.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the single source of truth for the current set of sessions
// and the selected session. Mutations replace the session slice
// wholesale so snapshots handed to readers never see partial updates.
//
// All methods are safe for concurrent use; UI commands run off the
// main goroutine.
type Store struct {
	mu       sync.RWMutex
	sessions []Session
	current  string
}

// NewStore creates an empty store with no selection.
func NewStore() *Store {
	return &Store{}
}

// Add creates a session with the given ID if absent and reports whether
// it was created. Adding an existing ID is a no-op, so lazy-create
// callers can invoke it on every session open.
func (s *Store) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) >= 0 {
		return false
	}

	now := time.Now()
	next := make([]Session, len(s.sessions), len(s.sessions)+1)
	copy(next, s.sessions)
	next = append(next, Session{
		ID:        id,
		Title:     fmt.Sprintf("Chat %d", len(s.sessions)+1),
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.sessions = next
	return true
}

// Restore inserts a fully populated session, used when hydrating from
// the remote store. An existing session with the same ID is left
// untouched; reports whether the session was inserted.
func (s *Store) Restore(sess Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(sess.ID) >= 0 {
		return false
	}

	next := make([]Session, len(s.sessions), len(s.sessions)+1)
	copy(next, s.sessions)
	s.sessions = append(next, sess)
	return true
}

// SetCurrent sets the selected session ID. The ID is not validated
// against the session set; selection of a missing ID simply yields an
// empty conversation view until the session is lazily created.
func (s *Store) SetCurrent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
}

// Current returns the selected session ID, or false when nothing is
// selected.
func (s *Store) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

// AddMessage appends a message to the named session. Returns
// ErrNotFound if the session does not exist; the store is unchanged.
func (s *Store) AddMessage(id string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := s.copySessions()
	sess := &next[i]
	msgs := make([]models.Message, len(sess.Messages), len(sess.Messages)+1)
	copy(msgs, sess.Messages)
	sess.Messages = append(msgs, msg)
	sess.UpdatedAt = time.Now()
	s.sessions = next
	return nil
}

// Messages returns a copy of the session's messages in append order.
// Unknown IDs yield an empty slice; a pure read never fails.
func (s *Store) Messages(id string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return []models.Message{}
	}
	out := make([]models.Message, len(s.sessions[i].Messages))
	copy(out, s.sessions[i].Messages)
	return out
}

// Delete removes the session. If it was selected, the selection is
// cleared in the same critical section so no reader observes a
// selection pointing at a dead session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := make([]Session, 0, len(s.sessions)-1)
	next = append(next, s.sessions[:i]...)
	next = append(next, s.sessions[i+1:]...)
	s.sessions = next

	if s.current == id {
		s.current = ""
	}
	return nil
}

// Rename sets the session title. The title is trimmed first; a
// whitespace-only title leaves the session unchanged.
func (s *Store) Rename(id, title string) error {
	title = strings.TrimSpace(title)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if title == "" {
		return nil
	}

	next := s.copySessions()
	next[i].Title = title
	next[i].UpdatedAt = time.Now()
	s.sessions = next
	return nil
}

// Sessions returns a snapshot of all sessions in insertion order.
// Message slices are shared with the store's immutable snapshot;
// callers must not mutate them.
func (s *Store) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Get returns a snapshot of one session.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i], true
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// indexOf returns the position of a session, or -1. Caller must hold
// the lock.
func (s *Store) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// copySessions duplicates the session slice for copy-on-write
// mutations. Caller must hold the write lock.
func (s *Store) copySessions() []Session {
	next := make([]Session, len(s.sessions))
	copy(next, s.sessions)
	return next
}
