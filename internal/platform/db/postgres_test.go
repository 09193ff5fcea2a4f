package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsMalformedDSN(t *testing.T) {
	pool, err := New(context.Background(), "postgres://:?bad=%zz")
	require.Error(t, err)
	require.Nil(t, pool)
}
