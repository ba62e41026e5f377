package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/db"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

// The tests below run against a real database and are skipped unless
// DATABASE_URL is set. The schema is migrated first, and every row they
// insert is removed through the user cascade in cleanup.

func newPostgresStore(t *testing.T) (*PostgresStore, int64) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("set DATABASE_URL to run")
	}

	if err := db.Migrate(url); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool), seedUser(t, pool)
}

func seedUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()

	var addressID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO addresses (street, house, city, zip, country)
		VALUES ('Main', '1', 'Warsaw', '00-001', 'PL')
		RETURNING id
	`).Scan(&addressID)
	if err != nil {
		t.Fatalf("seed address: %v", err)
	}

	var userID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, login, password_hash,
			phone_number, birth_date, address_id)
		VALUES ('Test', 'User', $1, $2, 'x', $3, '2001-05-20', $4)
		RETURNING id
	`,
		fmt.Sprintf("%s@example.com", suffix),
		suffix,
		fmt.Sprintf("+48%s", suffix),
		addressID,
	).Scan(&userID)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, addressID)
	})
	return userID
}

func newDBSession(userID int64, expiredAt time.Time) model.Session {
	return model.Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiredAt: expiredAt,
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	store, userID := newPostgresStore(t)
	ctx := context.Background()

	sess := newDBSession(userID, time.Now().Add(time.Hour))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create error: %v", err)
	}

	got, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.ID != sess.ID || got.UserID != userID {
		t.Fatalf("got session %+v, want id %s user %d", got, sess.ID, userID)
	}

	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPostgresRenewExtendsLiveSession(t *testing.T) {
	store, userID := newPostgresStore(t)
	ctx := context.Background()

	sess := newDBSession(userID, time.Now().Add(time.Minute))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create error: %v", err)
	}

	newExpiry := time.Now().Add(time.Hour)
	renewed, err := store.Renew(ctx, sess.Token, newExpiry)
	if err != nil {
		t.Fatalf("renew error: %v", err)
	}
	if renewed.ExpiredAt.Unix() != newExpiry.Unix() {
		t.Fatalf("expiry = %s, want %s", renewed.ExpiredAt, newExpiry)
	}
	if !renewed.ExpiredAt.After(sess.ExpiredAt) {
		t.Fatalf("expiry must move forward: %s -> %s", sess.ExpiredAt, renewed.ExpiredAt)
	}
}

func TestPostgresRenewAfterDelete(t *testing.T) {
	store, userID := newPostgresStore(t)
	ctx := context.Background()

	sess := newDBSession(userID, time.Now().Add(time.Hour))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("delete error: %v", err)
	}

	// A renewal that lost the race against a logout must fail, not
	// recreate the row.
	if _, err := store.Renew(ctx, sess.Token, time.Now().Add(time.Hour)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on renew after delete, got %v", err)
	}
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected session to stay gone, got %v", err)
	}
}

func TestPostgresRenewSkipsExpiredSession(t *testing.T) {
	store, userID := newPostgresStore(t)
	ctx := context.Background()

	sess := newDBSession(userID, time.Now().Add(-time.Minute))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create error: %v", err)
	}

	if _, err := store.Renew(ctx, sess.Token, time.Now().Add(time.Hour)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on renew of expired session, got %v", err)
	}

	// The guard must leave the stale expiry untouched.
	got, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.ExpiredAt.After(time.Now()) {
		t.Fatalf("expired session resurrected: expiry %s", got.ExpiredAt)
	}
}
