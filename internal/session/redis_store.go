package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// RedisStore keeps drafts in Redis under prefix:sessionID with a sliding TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if rdb == nil {
		panic("nil redis client passed to NewRedisStore")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (booking.Draft, error) {
	bs, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return booking.EmptyDraft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	d, err := booking.DecodeDraft(bs)
	if err != nil {
		// a draft we cannot read is as good as none
		_ = s.rdb.Del(ctx, s.key(sessionID)).Err()
		return booking.EmptyDraft{}, nil
	}
	// sliding expiry
	_ = s.rdb.Expire(ctx, s.key(sessionID), s.ttl).Err()
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, d booking.Draft) error {
	bs, err := booking.EncodeDraft(d)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(sessionID), bs, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.Save(ctx, sessionID, booking.EmptyDraft{})
}
