package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

// PostgresStore keeps sessions in the sessions table. Used when Redis is
// not configured.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, sess model.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, user_id, expired_at)
		VALUES ($1, $2, $3, $4)
	`, sess.ID, sess.Token, sess.UserID, sess.ExpiredAt)
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, token string) (model.Session, error) {
	var sess model.Session
	row := s.pool.QueryRow(ctx, `
		SELECT id, token, user_id, expired_at
		FROM sessions
		WHERE token = $1
	`, token)
	if err := row.Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.ExpiredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, apperr.NotFound("session not found")
		}
		return model.Session{}, apperr.Store(err)
	}
	return sess, nil
}

func (s *PostgresStore) Renew(ctx context.Context, token string, expiredAt time.Time) (model.Session, error) {
	// The expired_at guard makes the renewal conditional: a concurrent
	// delete or expiry leaves no row to update and the renewal fails
	// instead of resurrecting the session.
	var sess model.Session
	row := s.pool.QueryRow(ctx, `
		UPDATE sessions
		SET expired_at = $2
		WHERE token = $1 AND expired_at > now()
		RETURNING id, token, user_id, expired_at
	`, token, expiredAt)
	if err := row.Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.ExpiredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, apperr.NotFound("session not found")
		}
		return model.Session{}, apperr.Store(err)
	}
	return sess, nil
}

func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return apperr.Store(err)
	}
	return nil
}
