package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"account-service/internal/data/entity"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleUser() *entity.User {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: "hash",
		Role:         entity.RoleUser,
		IsActive:     true,
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	user := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	user := sampleUser()
	dbErr := errors.New("duplicate key")

	mock.ExpectExec("INSERT INTO users").WillReturnError(dbErr)

	err := repo.Create(context.Background(), user)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmailNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())

	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))

	user, err := repo.FindByID(context.Background(), id)
	require.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountAll(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	caller := uuid.New()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs(caller).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.CountAll(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	user := sampleUser()

	mock.ExpectExec("UPDATE users").
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), user)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET deleted_at").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET deleted_at").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
