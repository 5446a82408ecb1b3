package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Session is a persisted chat session document. The message list is
// replaced wholesale on every update (last write wins); the store keeps
// no per-message history.
type Session struct {
	ID        surrealmodels.RecordID  `json:"id"`
	Title     string                  `json:"title"`
	User      *surrealmodels.RecordID `json:"user,omitempty"`
	Messages  []Message               `json:"messages"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}
