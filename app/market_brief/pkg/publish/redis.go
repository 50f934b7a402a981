package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
)

// Redis 把报告写到单个 key
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis 创建 Redis 发布目标。url 可以是 redis:// 地址，也可以是 host:port
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis url is required")
	}
	key := cfg.Key
	if key == "" {
		key = "market_brief:report"
	}
	return &Redis{client: redis.NewClient(redisOptions(cfg.URL)), key: key}, nil
}

func redisOptions(url string) *redis.Options {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return opt
}

func (r *Redis) Publish(ctx context.Context, doc []byte) error {
	if err := r.client.Set(ctx, r.key, doc, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return data, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
