package entity

import (
	"time"

	"github.com/google/uuid"
)

// OTP is a pending one-time password for an account identifier.
// It is replaced wholesale on re-issue and never mutated except for Attempts.
type OTP struct {
	ID         uuid.UUID
	Identifier string
	Code       string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Attempts   int
}

// IsExpired reports whether the code is no longer valid at now.
func (o OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
