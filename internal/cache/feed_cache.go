package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brauliobolano/LinkedInClone/config"
	"github.com/brauliobolano/LinkedInClone/dto"
)

const (
	FeedKey       = "feed:all"
	GenerationKey = "feed:gen"
)

// setIfGeneration stores the feed only while the generation still matches the
// one the caller read before loading from the store.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// NewRedisClient accepts either host:port or a redis:// URL in cfg.Addr and
// pings before returning.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		parsed, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// FeedCache keeps the rendered feed as a single JSON value.
type FeedCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewFeedCache(rdb redis.Cmdable, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FeedCache{rdb: rdb, ttl: ttl}
}

func (c *FeedCache) GetFeed(ctx context.Context) ([]dto.PostResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, FeedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var posts []dto.PostResponse
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false, fmt.Errorf("decode cached feed: %w", err)
	}
	return posts, true, nil
}

// Generation is bumped by every Invalidate. A missing counter reads as 0.
func (c *FeedCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetFeed stores posts if no Invalidate happened since gen was read. It
// reports whether the feed was stored.
func (c *FeedCache) SetFeed(ctx context.Context, gen int64, posts []dto.PostResponse) (bool, error) {
	if posts == nil {
		posts = []dto.PostResponse{}
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return false, err
	}
	stored, err := setIfGeneration.Run(ctx, c.rdb,
		[]string{FeedKey, GenerationKey},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("store feed: %w", err)
	}
	return stored == 1, nil
}

func (c *FeedCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, FeedKey)
		return nil
	})
	return err
}
