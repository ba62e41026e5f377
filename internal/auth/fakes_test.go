package auth

import (
	"context"
	"sync"
	"time"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

// memUsers is an in-memory UserStore with the same uniqueness behavior
// as the relational store.
type memUsers struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]model.User)}
}

func (m *memUsers) CreateUserWithAddress(_ context.Context, user model.User, _ model.Address) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Login == user.Login {
			return 0, apperr.Conflict("Login already exists")
		}
		if existing.Email == user.Email {
			return 0, apperr.Conflict("Email already exists")
		}
		if existing.PhoneNumber == user.PhoneNumber {
			return 0, apperr.Conflict("Phone number already exists")
		}
	}
	m.seq++
	user.ID = m.seq
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return model.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (m *memUsers) GetUserByLoginOrEmail(_ context.Context, email, login string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if (email != "" && user.Email == email) || (login != "" && user.Login == login) {
			return user, nil
		}
	}
	return model.User{}, apperr.NotFound("user not found")
}

// memSessions is an in-memory session.Store. Renew is conditional on the
// session existing and not being expired, matching the SQL guard.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	now      func() time.Time
}

func newMemSessions(now func() time.Time) *memSessions {
	return &memSessions{sessions: make(map[string]model.Session), now: now}
}

func (m *memSessions) Create(_ context.Context, sess model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = sess
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return model.Session{}, apperr.NotFound("session not found")
	}
	return sess, nil
}

func (m *memSessions) Renew(_ context.Context, token string, expiredAt time.Time) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok || !sess.ExpiredAt.After(m.now()) {
		return model.Session{}, apperr.NotFound("session not found")
	}
	sess.ExpiredAt = expiredAt
	m.sessions[token] = sess
	return sess, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

func (m *memSessions) expiry(token string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[token].ExpiredAt
}
