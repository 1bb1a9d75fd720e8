package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/vendamais/orderhub/internal/redisx"
)

// RedisRealtime publishes stock messages on the tenant's channel; the
// socket gateway subscribed there relays them to the company's room.
type RedisRealtime struct {
	RDB *redis.Client
}

func (r *RedisRealtime) Emit(ctx context.Context, companyID int64, message string) error {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return err
	}
	return r.RDB.Publish(ctx, redisx.StockAlertChannel(companyID), payload).Err()
}

type RedisDedup struct {
	RDB     *redis.Client
	Service string
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.RDB, redisx.DedupKey(d.Service, eventID))
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	return d.RDB.Set(ctx, redisx.DedupKey(d.Service, eventID), "1", redisx.TTLDedup).Err()
}
