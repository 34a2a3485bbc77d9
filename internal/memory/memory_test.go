package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns canned vectors per text, falling back to a constant
// vector so every unknown text ties in similarity.
type stubEmbedder struct {
	vectors map[string][]float64
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

func TestQueryEmptyStore(t *testing.T) {
	mem := New(RoleBull, &stubEmbedder{})

	got, err := mem.Query(context.Background(), "any situation", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryRanksBySimilarity(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"rates rising":   {1, 0, 0},
		"earnings beat":  {0, 1, 0},
		"supply squeeze": {0, 0, 1},
		"rate hike news": {0.9, 0.1, 0},
	}}
	mem := New(RoleBear, emb)
	ctx := context.Background()

	require.NoError(t, mem.AddSituations(ctx, [][2]string{
		{"rates rising", "trim duration"},
		{"earnings beat", "stay long"},
		{"supply squeeze", "watch inventories"},
	}))

	got, err := mem.Query(ctx, "rate hike news", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "trim duration", got[0].Recommendation)
}

func TestQueryTiesKeepInsertionOrder(t *testing.T) {
	// Constant embeddings make every record equally similar.
	mem := New(RoleTrader, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, mem.AddSituations(ctx, [][2]string{
		{"first", "lesson one"},
		{"second", "lesson two"},
		{"third", "lesson three"},
	}))

	got, err := mem.Query(ctx, "anything", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "lesson one", got[0].Recommendation)
	assert.Equal(t, "lesson two", got[1].Recommendation)
}

func TestQueryKBounds(t *testing.T) {
	mem := New(RoleBull, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, mem.AddSituations(ctx, [][2]string{
		{"a", "ra"},
		{"b", "rb"},
	}))

	all, err := mem.Query(ctx, "a", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := mem.Query(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()
	emb := &stubEmbedder{}

	mem, err := Open(dbPath, RoleRiskJudge, emb)
	require.NoError(t, err)
	require.NoError(t, mem.AddSituations(ctx, [][2]string{
		{"volatile open", "size down"},
	}))
	require.NoError(t, mem.Close())

	reopened, err := Open(dbPath, RoleRiskJudge, emb)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 1, reopened.Len())
	got, err := reopened.Query(ctx, "volatile open", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "size down", got[0].Recommendation)
	assert.Equal(t, "volatile open", got[0].Situation)
}

func TestRolesAreIsolated(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()
	emb := &stubEmbedder{}

	bull, err := Open(dbPath, RoleBull, emb)
	require.NoError(t, err)
	require.NoError(t, bull.AddSituations(ctx, [][2]string{{"bull case", "hold longs"}}))
	require.NoError(t, bull.Close())

	bear, err := Open(dbPath, RoleBear, emb)
	require.NoError(t, err)
	defer bear.Close()
	assert.Equal(t, 0, bear.Len())
}
