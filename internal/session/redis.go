package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jmadden/clubhouse/internal/domain"
)

// RedisStore is the shared-cache backing. Keys are "sess:<token>" holding
// the user id, expired by redis TTL.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisStore(rdb *goredis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "sess:"}
}

func (s *RedisStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	tok, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	val := strconv.FormatInt(userID, 10)
	if err := s.rdb.Set(ctx, s.prefix+tok, val, ttl).Err(); err != nil {
		return "", domain.ErrInternal(err)
	}
	return tok, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrSessionInvalid()
	}
	val, err := s.rdb.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, domain.ErrSessionInvalid()
		}
		return 0, domain.ErrInternal(err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, domain.ErrSessionInvalid()
	}
	return id, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, s.prefix+token).Err(); err != nil {
		return domain.ErrInternal(err)
	}
	return nil
}
