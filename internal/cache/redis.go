package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "page:"

// PageCache stores raw fetched pages in redis, keyed by URL.
type PageCache struct{ c *redis.Client }

func New(addr, pass string, db int) *PageCache {
	return &PageCache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (p *PageCache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	v, err := p.c.Get(ctx, keyPrefix+url).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (p *PageCache) Set(ctx context.Context, url string, body []byte, ttl time.Duration) error {
	return p.c.Set(ctx, keyPrefix+url, body, ttl).Err()
}

func (p *PageCache) Ping(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}

func (p *PageCache) Close() error {
	return p.c.Close()
}
