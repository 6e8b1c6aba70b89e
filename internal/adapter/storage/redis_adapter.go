package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/wms/internal/port"
)

const stockKeyPrefix = "stock:"

// RedisAdapter mirrors derived stock snapshots into redis for read-side
// consumers (dashboards, pickers). The database snapshot stays authoritative;
// the service treats failures here as non-fatal.
type RedisAdapter struct {
	client *redis.Client
}

var _ port.CacheRepository = (*RedisAdapter)(nil)

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(variantID int64) string {
	return stockKeyPrefix + strconv.FormatInt(variantID, 10)
}

func (r *RedisAdapter) SetStock(ctx context.Context, variantID int64, quantity int) error {
	return r.client.Set(ctx, stockKey(variantID), quantity, 0).Err()
}

func (r *RedisAdapter) GetStock(ctx context.Context, variantID int64) (int, bool, error) {
	quantity, err := r.client.Get(ctx, stockKey(variantID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return quantity, true, nil
}

func (r *RedisAdapter) DeleteStock(ctx context.Context, variantID int64) error {
	return r.client.Del(ctx, stockKey(variantID)).Err()
}
