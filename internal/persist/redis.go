package persist

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keeps records as plain string values without expiry
type Redis struct {
	logger *zap.SugaredLogger
	client *redis.Client
}

// NewRedis returns a Redis backend; the connection is established lazily, use Ping to check it
func NewRedis(logger *zap.SugaredLogger, cfg RedisConfig) *Redis {
	return &Redis{
		logger: logger,
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Ping checks the connection to the server
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Load returns the value stored under key
func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	r.logger.Debugf("Loaded record (%s) from redis", key)

	return data, true, nil
}

// Save sets the value stored under key
func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	r.logger.Debugf("Saving record (%s) to redis", key)
	return r.client.Set(ctx, key, data, 0).Err()
}

// Delete removes key
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Close closes the client
func (r *Redis) Close() error {
	return r.client.Close()
}
