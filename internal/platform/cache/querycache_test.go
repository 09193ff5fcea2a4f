package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Total float64 `json:"total"`
}

func newTestCache(t *testing.T) *QueryCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueryCache(client, time.Minute)
}

func TestReadBuildsOnceAndCaches(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	builds := 0
	build := func(context.Context) (any, error) {
		builds++
		return payload{Total: 42.5}, nil
	}

	var got payload
	require.NoError(t, c.Read(ctx, "reports", []string{"pnl", "2024-01"}, &got, build))
	require.Equal(t, 42.5, got.Total)
	require.Equal(t, 1, builds)

	got = payload{}
	require.NoError(t, c.Read(ctx, "reports", []string{"pnl", "2024-01"}, &got, build))
	require.Equal(t, 42.5, got.Total)
	require.Equal(t, 1, builds, "second read must serve from cache")
}

func TestInvalidateForcesRebuild(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	builds := 0
	build := func(context.Context) (any, error) {
		builds++
		return payload{Total: float64(builds)}, nil
	}

	var got payload
	require.NoError(t, c.Read(ctx, "reports", []string{"pnl"}, &got, build))
	require.Equal(t, 1.0, got.Total)

	require.NoError(t, c.Invalidate(ctx, "reports"))

	require.NoError(t, c.Read(ctx, "reports", []string{"pnl"}, &got, build))
	require.Equal(t, 2.0, got.Total, "invalidated group must refetch, not patch")
	require.Equal(t, 2, builds)
}

func TestInvalidateIsScopedToGroup(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	builds := 0
	build := func(context.Context) (any, error) {
		builds++
		return payload{Total: 1}, nil
	}

	var got payload
	require.NoError(t, c.Read(ctx, "expenses", []string{"list"}, &got, build))
	require.NoError(t, c.Invalidate(ctx, "reports"))
	require.NoError(t, c.Read(ctx, "expenses", []string{"list"}, &got, build))
	require.Equal(t, 1, builds, "unrelated group invalidation must not evict")
}

func TestReadWithoutClientDegradesToBuild(t *testing.T) {
	c := NewQueryCache(nil, time.Minute)
	ctx := context.Background()

	var got payload
	err := c.Read(ctx, "reports", []string{"pnl"}, &got, func(context.Context) (any, error) {
		return payload{Total: 7}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7.0, got.Total)
}
