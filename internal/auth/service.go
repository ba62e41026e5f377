// Package auth implements the authentication service: registration,
// credential login, session verification with sliding expiration, and
// logout. Collaborators are injected; the service holds no state beyond
// configuration.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/crypto"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
	"github.com/wChoros/OpenEduLog-backend/internal/session"
)

// UserStore is the slice of the relational store the service needs.
type UserStore interface {
	CreateUserWithAddress(ctx context.Context, user model.User, addr model.Address) (int64, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	GetUserByLoginOrEmail(ctx context.Context, email, login string) (model.User, error)
}

type Service struct {
	users      UserStore
	sessions   session.Store
	ttl        time.Duration
	bcryptCost int

	now func() time.Time
}

func NewService(users UserStore, sessions session.Store, ttl time.Duration, bcryptCost int) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// TTL returns the configured session time-to-live, used by the HTTP
// layer for cookie expiry.
func (s *Service) TTL() time.Duration { return s.ttl }

// Register validates the profile, persists the address and the user, and
// returns the new user id. The role is always STUDENT; roles are never
// self-assigned. Email confirmation is recorded as pending but not
// enforced anywhere.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	birthDate, err := in.validate(s.now())
	if err != nil {
		return 0, err
	}

	hash, err := crypto.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return 0, apperr.Store(err)
	}

	user := model.User{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Login:            in.Login,
		PasswordHash:     hash,
		IsEmailConfirmed: false,
		PhoneNumber:      in.PhoneNumber,
		BirthDate:        birthDate,
		Role:             model.RoleStudent,
	}
	addr := model.Address{
		Street:  in.Address.Street,
		House:   in.Address.House,
		City:    in.Address.City,
		Zip:     in.Address.Zip,
		Country: in.Address.Country,
	}
	return s.users.CreateUserWithAddress(ctx, user, addr)
}

type LoginInput struct {
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session. Unknown identifier and
// wrong password produce the same error so callers cannot enumerate
// users.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, model.Role, error) {
	if in.Email == "" && in.Login == "" {
		return "", "", apperr.Validation("Email or login is required")
	}
	if in.Password == "" {
		return "", "", apperr.Validation("Password is required")
	}

	user, err := s.users.GetUserByLoginOrEmail(ctx, in.Email, in.Login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", "", apperr.Auth("Invalid credentials")
		}
		return "", "", err
	}
	if err := crypto.CheckPassword(user.PasswordHash, in.Password); err != nil {
		return "", "", apperr.Auth("Invalid credentials")
	}

	token, err := crypto.NewSessionToken()
	if err != nil {
		return "", "", apperr.Store(err)
	}
	sess := model.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    user.ID,
		ExpiredAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// VerifySession resolves a token to a Principal. An expired session is
// purged and reported as unauthorized; a live one has its expiry slid
// forward by the TTL. The renewal is conditional in the store, so a
// concurrent logout wins over an in-flight renewal.
func (s *Service) VerifySession(ctx context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, apperr.Auth("Unauthorized")
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.Principal{}, apperr.Auth("Invalid session")
		}
		return model.Principal{}, err
	}

	now := s.now()
	if now.After(sess.ExpiredAt) {
		_ = s.sessions.Delete(ctx, token)
		return model.Principal{}, apperr.Auth("Session expired")
	}

	if _, err := s.sessions.Renew(ctx, token, now.Add(s.ttl)); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Deleted between the read and the renewal.
			return model.Principal{}, apperr.Auth("Invalid session")
		}
		return model.Principal{}, err
	}

	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.Principal{}, apperr.Auth("Invalid session")
		}
		return model.Principal{}, err
	}
	// A principal never carries a role outside the known set; a row with
	// a corrupt role cannot act at all.
	if !user.Role.Valid() {
		return model.Principal{}, apperr.Forbidden("Forbidden")
	}
	return model.Principal{ID: user.ID, Role: user.Role}, nil
}

// Logout terminates the session behind the token. A token that matches
// nothing, or a session already expired, is reported as unauthorized;
// the expired row is still purged. A terminated token cannot be used
// again.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Auth("Unauthorized")
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Auth("Invalid session or already logged out")
		}
		return err
	}

	if s.now().After(sess.ExpiredAt) {
		_ = s.sessions.Delete(ctx, token)
		return apperr.Auth("Session expired")
	}
	return s.sessions.Delete(ctx, token)
}
