// Package db provides SurrealDB query functions for session operations.
package db

import (
	"context"
	"fmt"

	"github.com/roamchat/roam/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateSession creates a session document owned by the authenticated
// user with an empty message list and server-assigned timestamps.
func (c *Client) CreateSession(ctx context.Context, title string) (*models.Session, error) {
	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		CREATE session SET title = $title
	`, map[string]any{"title": title})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create session: %w", ErrNotAuthenticated)
	}
	return &(*results)[0].Result[0], nil
}

// ListSessions returns the authenticated user's sessions ordered by
// most recently updated first.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		SELECT * FROM session WHERE user = $auth.id ORDER BY updated_at DESC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Session{}, nil
	}
	return (*results)[0].Result, nil
}

// GetSession retrieves one session by ID. Returns ErrNotFound when the
// record does not exist or belongs to another user.
func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		SELECT * FROM type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// UpdateMessages replaces the session's message list wholesale and
// refreshes updated_at. Last write wins; there is no merge of
// concurrent writers.
func (c *Client) UpdateMessages(ctx context.Context, id string, messages []models.Message) (*models.Session, error) {
	if messages == nil {
		messages = []models.Message{}
	}

	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		UPDATE type::record("session", $id) SET
			messages = $messages,
			updated_at = time::now()
	`, map[string]any{"id": id, "messages": messages})
	if err != nil {
		return nil, fmt.Errorf("update messages: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("update messages %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// UpdateTitle replaces the session title and refreshes updated_at.
func (c *Client) UpdateTitle(ctx context.Context, id, title string) (*models.Session, error) {
	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		UPDATE type::record("session", $id) SET
			title = $title,
			updated_at = time::now()
	`, map[string]any{"id": id, "title": title})
	if err != nil {
		return nil, fmt.Errorf("update title: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("update title %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// DeleteSession removes a session document. Deleting a record that is
// already gone is not an error.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", wrapQueryError(err))
	}
	return nil
}

// CurrentUser returns the record user bound to the connection's
// authentication state, or ErrNotAuthenticated.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	results, err := surrealdb.Query[[]models.User](ctx, c.db, `
		SELECT * FROM $auth
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotAuthenticated
	}
	return &(*results)[0].Result[0], nil
}
