package cms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamedQueries(t *testing.T) {
	q, ok := Named("pricing-table")
	require.True(t, ok)
	require.Equal(t, TypePricingTable, q.ContentType)

	_, ok = Named("blog")
	require.False(t, ok)

	names := Names()
	require.Len(t, names, 10)
	require.Equal(t, "clients", names[0])
}

func TestProjectDetailQueryCarriesSlugAsParam(t *testing.T) {
	q := ProjectDetailQuery(`x" || true`)
	require.Equal(t, TypeProjectMain, q.ContentType)
	require.NotContains(t, q.GROQ, "true")
	require.Equal(t, `x" || true`, q.Params["slug"])
}
