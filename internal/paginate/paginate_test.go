package paginate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSliceAndTotals(t *testing.T) {
	p := New(seq(20), 9)

	require.Equal(t, 3, p.TotalPages())
	require.Equal(t, seq(9), p.Slice(1))
	require.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17}, p.Slice(2))
	require.Equal(t, []int{18, 19}, p.Slice(3))
	require.Nil(t, p.Slice(4))
	require.Nil(t, p.Slice(0))
}

func TestAdvanceAndHasMore(t *testing.T) {
	p := New(seq(20), 9)
	require.Equal(t, 1, p.Page)
	require.True(t, p.HasMore())
	require.Equal(t, "?page=2", p.NextHref())

	p = p.Advance()
	require.Equal(t, 2, p.Page)
	require.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17}, p.Current())
	require.True(t, p.HasMore())

	p = p.Advance()
	require.Equal(t, 3, p.Page)
	require.False(t, p.HasMore())
	require.Empty(t, p.NextHref())
	require.Equal(t, 3, p.Advance().Page)
}

func TestExactMultipleAndEmpty(t *testing.T) {
	p := New(seq(18), 9)
	require.Equal(t, 2, p.TotalPages())
	require.False(t, p.At(2).HasMore())

	empty := New[int](nil, 9)
	require.Equal(t, 1, empty.TotalPages())
	require.False(t, empty.HasMore())
	require.Empty(t, empty.Current())
}

func TestAtClamps(t *testing.T) {
	p := New(seq(20), 0)
	require.Equal(t, DefaultSize, p.Size)
	require.Equal(t, 1, p.At(-4).Page)
	require.Equal(t, 3, p.At(99).Page)
}

func TestPageParam(t *testing.T) {
	require.Equal(t, 1, PageParam(""))
	require.Equal(t, 1, PageParam("abc"))
	require.Equal(t, 1, PageParam("0"))
	require.Equal(t, 4, PageParam("4"))
}
