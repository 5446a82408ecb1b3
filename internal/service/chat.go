// Package service orchestrates a conversation turn: it owns the flow
// from user input through the completion client to the local store and
// the remote mirror. The store stays the single source of truth; remote
// persistence is layered on top and never blocks local reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/roamchat/roam/internal/llm"
	"github.com/roamchat/roam/internal/models"
	"github.com/roamchat/roam/internal/session"
)

const (
	welcomeText  = "👋 Hello! I'm your Travel assistant. Ask me anything!"
	fallbackText = "⚠️ Failed to get response from AI."
)

// ErrBusy is returned by Send when a reply for the same session is
// still pending. Callers should keep the input and retry once the
// pending turn resolves.
var ErrBusy = errors.New("a reply is already pending for this session")

// Completer produces an assistant reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, history []models.Message) (string, error)
}

// RemoteSync mirrors session state to the remote store. All methods
// tolerate a signed-out user; see the sync package for the per-method
// failure policy.
type RemoteSync interface {
	CreateSession(ctx context.Context, title string) *models.Session
	ListSessions(ctx context.Context) []models.Session
	UpdateMessages(ctx context.Context, id string, messages []models.Message) error
	UpdateTitle(ctx context.Context, id, title string) bool
	DeleteSession(ctx context.Context, id string) bool
}

// Chat drives conversations over a local store, a completion client and
// the remote mirror. A session created while signed in uses its remote
// record ID locally, so pushes address the same document; sessions
// created signed out stay local-only and are never pushed.
type Chat struct {
	store    *session.Store
	complete Completer
	remote   RemoteSync
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	backed   map[string]bool
}

// NewChat wires the chat service. All arguments are required.
func NewChat(store *session.Store, completer Completer, remote RemoteSync, logger *slog.Logger) *Chat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{
		store:    store,
		complete: completer,
		remote:   remote,
		logger:   logger,
		inflight: make(map[string]struct{}),
		backed:   make(map[string]bool),
	}
}

// LoadRemote hydrates the local store with the user's remote sessions,
// most recently updated first. Sessions already present locally keep
// their local state. Returns the number of sessions hydrated.
func (c *Chat) LoadRemote(ctx context.Context) int {
	remote := c.remote.ListSessions(ctx)

	loaded := 0
	for _, rs := range remote {
		id, err := models.RecordIDString(rs.ID)
		if err != nil {
			c.logger.Warn("skipping remote session with unusable id", "error", err)
			continue
		}
		inserted := c.store.Restore(session.Session{
			ID:        id,
			Title:     rs.Title,
			Messages:  rs.Messages,
			CreatedAt: rs.CreatedAt,
			UpdatedAt: rs.UpdatedAt,
		})
		c.setBacked(id)
		if inserted {
			loaded++
		}
	}
	return loaded
}

// NewChat creates a session, selects it and returns its ID. When a
// remote record can be created the session adopts the record's ID;
// otherwise it gets a local one and stays unpersisted.
func (c *Chat) NewChat(ctx context.Context) string {
	title := fmt.Sprintf("Chat %d", c.store.Len()+1)

	if created := c.remote.CreateSession(ctx, title); created != nil {
		if id, err := models.RecordIDString(created.ID); err == nil {
			c.store.Restore(session.Session{
				ID:        id,
				Title:     created.Title,
				Messages:  created.Messages,
				CreatedAt: created.CreatedAt,
				UpdatedAt: created.UpdatedAt,
			})
			c.setBacked(id)
			c.store.SetCurrent(id)
			return id
		}
	}

	id := uuid.NewString()
	c.store.Add(id)
	c.store.SetCurrent(id)
	return id
}

// Open ensures the session exists, selects it and returns its messages.
// A freshly created or still-empty session gets the assistant greeting
// so the conversation never opens blank.
func (c *Chat) Open(ctx context.Context, id string) []models.Message {
	c.store.Add(id)
	c.store.SetCurrent(id)

	if len(c.store.Messages(id)) == 0 {
		if err := c.store.AddMessage(id, models.NewMessage(models.SenderAssistant, welcomeText)); err != nil {
			c.logger.Warn("greeting not recorded", "session", id, "error", err)
		}
	}
	return c.store.Messages(id)
}

// Send runs one conversation turn: append the user message, request a
// completion and append the reply. A failed completion appends the
// fallback message instead, so the conversation always shows an
// assistant response. The returned slice is the session's full message
// list after the turn.
//
// Only one turn per session may be in flight; a second concurrent Send
// returns ErrBusy without touching the session. A non-nil error after a
// completed turn means the remote push failed and the new messages
// exist only locally.
func (c *Chat) Send(ctx context.Context, id, text string) ([]models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return c.store.Messages(id), nil
	}

	if !c.acquire(id) {
		return c.store.Messages(id), ErrBusy
	}
	defer c.release(id)

	if err := c.store.AddMessage(id, models.NewMessage(models.SenderUser, text)); err != nil {
		return c.store.Messages(id), fmt.Errorf("record message: %w", err)
	}

	reply, err := c.complete.Complete(ctx, c.store.Messages(id))
	if err != nil {
		if !errors.Is(err, llm.ErrCompletionFailed) {
			c.logger.Error("unexpected completion error", "session", id, "error", err)
		}
		reply = fallbackText
	}
	if err := c.store.AddMessage(id, models.NewMessage(models.SenderAssistant, reply)); err != nil {
		return c.store.Messages(id), fmt.Errorf("record reply: %w", err)
	}

	messages := c.store.Messages(id)
	if c.isBacked(id) {
		if err := c.remote.UpdateMessages(ctx, id, messages); err != nil {
			return messages, fmt.Errorf("session not persisted: %w", err)
		}
	}
	return messages, nil
}

// Rename sets the session title locally and mirrors it remotely. A
// blank title is ignored. The remote push is best effort.
func (c *Chat) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if err := c.store.Rename(id, title); err != nil {
		return err
	}
	if c.isBacked(id) && !c.remote.UpdateTitle(ctx, id, title) {
		c.logger.Warn("title not persisted remotely", "session", id)
	}
	return nil
}

// Delete removes the session locally and remotely. The local delete
// wins: a failed remote delete is logged, not surfaced.
func (c *Chat) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(id); err != nil {
		return err
	}
	if c.isBacked(id) {
		if !c.remote.DeleteSession(ctx, id) {
			c.logger.Warn("remote session not deleted", "session", id)
		}
		c.mu.Lock()
		delete(c.backed, id)
		c.mu.Unlock()
	}
	return nil
}

// Busy reports whether a turn is in flight for the session.
func (c *Chat) Busy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[id]
	return ok
}

func (c *Chat) acquire(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[id]; ok {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *Chat) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}

func (c *Chat) setBacked(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backed[id] = true
}

func (c *Chat) isBacked(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backed[id]
}
