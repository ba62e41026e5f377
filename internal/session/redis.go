package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

const keyPrefix = "session:"

// renewScript extends a session's lifetime only if the key still exists.
// Redis evicts expired keys itself, so a missing key means the session
// expired or was logged out; either way the renewal must not recreate it.
const renewScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  return redis.call("GET", KEYS[1])
end
return false
`

var renewLua = redis.NewScript(renewScript)

type sessionBlob struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`
}

// RedisStore keeps sessions in Redis with the expiry carried by the key
// TTL. Used when REDIS_ADDR is configured.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, sess model.Session) error {
	payload, err := json.Marshal(sessionBlob{ID: sess.ID, UserID: sess.UserID})
	if err != nil {
		return apperr.Store(err)
	}
	ttl := time.Until(sess.ExpiredAt)
	if ttl <= 0 {
		return apperr.Store(errors.New("session already expired"))
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (model.Session, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, keyPrefix+token)
	ttlCmd := pipe.PTTL(ctx, keyPrefix+token)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, apperr.NotFound("session not found")
		}
		return model.Session{}, apperr.Store(err)
	}

	var blob sessionBlob
	if err := json.Unmarshal([]byte(getCmd.Val()), &blob); err != nil {
		return model.Session{}, apperr.Store(err)
	}
	return model.Session{
		ID:        blob.ID,
		Token:     token,
		UserID:    blob.UserID,
		ExpiredAt: time.Now().Add(ttlCmd.Val()),
	}, nil
}

func (s *RedisStore) Renew(ctx context.Context, token string, expiredAt time.Time) (model.Session, error) {
	ttl := time.Until(expiredAt)
	if ttl <= 0 {
		return model.Session{}, apperr.NotFound("session not found")
	}
	res, err := renewLua.Run(ctx, s.client, []string{keyPrefix + token}, ttl.Milliseconds()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, apperr.NotFound("session not found")
		}
		return model.Session{}, apperr.Store(err)
	}
	raw, ok := res.(string)
	if !ok {
		return model.Session{}, apperr.NotFound("session not found")
	}

	var blob sessionBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return model.Session{}, apperr.Store(err)
	}
	return model.Session{
		ID:        blob.ID,
		Token:     token,
		UserID:    blob.UserID,
		ExpiredAt: expiredAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return apperr.Store(err)
	}
	return nil
}
