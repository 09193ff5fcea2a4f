package cache

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := New(context.Background(), srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewFailsWhenServerUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	client, err := New(context.Background(), addr)
	require.Error(t, err)
	require.Nil(t, client)
}
