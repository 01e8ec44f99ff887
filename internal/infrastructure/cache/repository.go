package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bondcalc/internal/domain/entity/bond"
	"bondcalc/internal/domain/interfaces"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bondvalue"

// Repository stores computed bond values in Redis. A nil *Repository is a
// valid no-op cache.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ interfaces.ValueCache = (*Repository)(nil)

func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	if client == nil {
		return nil
	}
	return &Repository{client: client, ttl: ttl}
}

func (r *Repository) Get(ctx context.Context, key string) (bond.Money, bool, error) {
	if r == nil {
		return bond.Money{}, false, nil
	}
	cached, err := r.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return bond.Money{}, false, nil
	}
	if err != nil {
		return bond.Money{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	value, err := bond.ParseMoney(cached)
	if err != nil {
		return bond.Money{}, false, err
	}
	return value, true, nil
}

func (r *Repository) Set(ctx context.Context, key string, value bond.Money) error {
	if r == nil {
		return nil
	}
	if err := r.client.Set(ctx, redisKey(key), value.String(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func redisKey(key string) string {
	return keyPrefix + ":" + key
}
