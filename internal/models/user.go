package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User is an authenticated account record. The password hash lives only
// in the database; it is never read back by the client.
type User struct {
	ID        surrealmodels.RecordID `json:"id"`
	Email     string                 `json:"email"`
	Name      string                 `json:"name"`
	CreatedAt time.Time              `json:"created_at"`
}
