package repository

import (
	"account-service/pkg/database"

	"go.uber.org/zap"
)

// Repository groups the persistence handles shared by the usecases.
// Users and sessions live in PostgreSQL; pending OTPs stay in memory.
type Repository struct {
	User    UserRepository
	Session SessionRepository
	OTP     *MemoryOTPRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		OTP:     NewOTPRepository(log),
	}
}
