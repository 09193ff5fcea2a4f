package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationRoundsPagesUp(t *testing.T) {
	p := NewPagination(2, 20, 45)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 20, p.PerPage)
	require.Equal(t, 45, p.Total)
	require.Equal(t, 3, p.TotalPages)
}

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 10)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.PerPage)
	require.Equal(t, 1, p.TotalPages)
}

func TestPageFromOffset(t *testing.T) {
	p := PageFromOffset(50, 100, 230)
	require.Equal(t, 3, p.Page)
	require.Equal(t, 50, p.PerPage)
	require.Equal(t, 230, p.Total)
	require.Equal(t, 5, p.TotalPages)

	p = PageFromOffset(0, -5, 7)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.PerPage)
}
