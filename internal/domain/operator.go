package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operator is an authenticated usher (or admin) account. Looked up once at
// session start; the scan hot path only carries the ID.
type Operator struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Role         OperatorRole
	PasswordHash string
	CreatedAt    time.Time
}
