package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QueryCache is a Redis-backed cache keyed by query identity. Cached entries
// are never patched in place: every mutation bumps the group version, which
// orphans all keys under that group, and the next read rebuilds from source.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewQueryCache instantiates the cache helper.
func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	return &QueryCache{client: client, ttl: ttl}
}

func versionKey(group string) string {
	return "qc:ver:" + group
}

// Version returns the current version for a tag group, initialising when missing.
func (c *QueryCache) Version(ctx context.Context, group string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(group)).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey(group), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey(group), ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key for a group with the current version.
func (c *QueryCache) BuildKey(ctx context.Context, group string, parts ...string) (string, error) {
	suffix := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return group + ":" + suffix, nil
	}
	ver, err := c.Version(ctx, group)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("q:%s:v%d:%s", group, ver, suffix), nil
}

// Read returns the cached value for the tag, building and storing it on a
// miss. Concurrent reads of the same key collapse into one build. dest must
// be a pointer; values round-trip through JSON.
func (c *QueryCache) Read(ctx context.Context, group string, parts []string, dest any, build func(context.Context) (any, error)) error {
	if c == nil || c.client == nil {
		val, err := build(ctx)
		if err != nil {
			return err
		}
		return reencode(val, dest)
	}

	key, err := c.BuildKey(ctx, group, parts...)
	if err != nil {
		return err
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(raw, dest)
	}
	if err != redis.Nil {
		return fmt.Errorf("platform/cache: read %s: %w", key, err)
	}

	resultChan := c.group.DoChan(key, func() (any, error) {
		val, err := build(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			return nil, fmt.Errorf("platform/cache: store %s: %w", key, err)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate bumps the version of each tag group, orphaning cached entries.
func (c *QueryCache) Invalidate(ctx context.Context, groups ...string) error {
	if c == nil || c.client == nil {
		return nil
	}
	for _, group := range groups {
		if err := c.client.Incr(ctx, versionKey(group)).Err(); err != nil {
			return fmt.Errorf("platform/cache: invalidate %s: %w", group, err)
		}
	}
	return nil
}

func reencode(val, dest any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
