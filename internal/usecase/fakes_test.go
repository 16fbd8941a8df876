package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*entity.User
	fails error
}

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{byID: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return m.fails
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return nil, m.fails
	}
	u, ok := m.byID[id]
	if !ok || u.IsDeleted() {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return nil, m.fails
	}
	u, ok := lo.Find(lo.Values(m.byID), func(u *entity.User) bool {
		return u.Email == email && !u.IsDeleted()
	})
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) live(excludeID uuid.UUID) []*entity.User {
	users := lo.Filter(lo.Values(m.byID), func(u *entity.User, _ int) bool {
		return !u.IsDeleted() && u.ID != excludeID
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users
}

func (m *memUsers) FindAll(_ context.Context, excludeID uuid.UUID, limit, offset int) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := m.live(excludeID)
	if offset >= len(users) {
		return nil, nil
	}
	return users[offset:min(offset+limit, len(users))], nil
}

func (m *memUsers) CountAll(_ context.Context, excludeID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.live(excludeID))), nil
}

func (m *memUsers) Update(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || u.IsDeleted() {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

type memSessions struct {
	mu      sync.Mutex
	byToken map[uuid.UUID]*entity.Session
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: make(map[uuid.UUID]*entity.Session)}
}

func (m *memSessions) Create(_ context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.byToken[session.Token] = &cp
	return nil
}

func (m *memSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok || !s.IsActive(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Revoke(_ context.Context, token uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, s := range m.byToken {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *memSessions) CleanExpiredSessions(_ context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for token, s := range m.byToken {
		if s.ExpiresAt.Before(cutoff) {
			delete(m.byToken, token)
			n++
		}
	}
	return n, nil
}
