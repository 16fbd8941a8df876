package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the audit columns shared by soft-deletable rows.
type Base struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// IsDeleted reports whether the row has been soft deleted.
func (b Base) IsDeleted() bool {
	return b.DeletedAt != nil
}

type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
