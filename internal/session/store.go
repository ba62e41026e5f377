// Package session provides the server-side session stores. The store is
// the single source of truth for session state: there is no in-process
// cache, and renewal is a single conditional operation so that a renewal
// racing a logout or expiry purge can never resurrect a session.
package session

import (
	"context"
	"time"

	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

type Store interface {
	Create(ctx context.Context, sess model.Session) error

	// Get looks up a session by token. Returns apperr.ErrNotFound when
	// the token matches no session.
	Get(ctx context.Context, token string) (model.Session, error)

	// Renew extends the session's expiry, conditioned on the session
	// still existing and not being expired. Returns apperr.ErrNotFound
	// when the session was deleted or expired in the meantime.
	Renew(ctx context.Context, token string, expiredAt time.Time) (model.Session, error)

	// Delete removes the session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, token string) error
}
