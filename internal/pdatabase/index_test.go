package pdatabase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pdata"
	"github.com/pioneer-storage/pioneer/internal/pdatabase"
)

func TestIndexWrapperNarrowsQueryToIndexedKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newTestDB(t, "idx_inner_db")
	index := newTestDB(t, "idx_meta_db")
	idx := pdatabase.NewIndexWrapper(inner, index)

	require.NoError(t, idx.Insert(ctx, "1", pdata.New(map[string]interface{}{"name": "A"})))
	require.NoError(t, idx.Insert(ctx, "2", pdata.New(map[string]interface{}{"name": "B"})))

	q := pdatabase.Select("name").Where(pdatabase.Where("name", pdatabase.OpEqual, "B"))
	results, err := idx.Query(ctx, q)
	require.NoError(t, err)
	require.Len(t, results, 1)

	v, ok := results[0].GetPath(pdata.ParseFieldPath("name"))
	require.True(t, ok)
	require.Equal(t, "B", v)
}

func TestIndexWrapperMatchesUnindexedQueryResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newTestDB(t, "idx_inner_db2")
	plain := newTestDB(t, "idx_plain_db2")
	index := newTestDB(t, "idx_meta_db2")
	idx := pdatabase.NewIndexWrapper(inner, index)

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, idx.Insert(ctx, name, pdata.New(map[string]interface{}{"name": name})))
		require.NoError(t, plain.Insert(ctx, name, pdata.New(map[string]interface{}{"name": name})))
	}

	q := pdatabase.Select("name").Where(pdatabase.Where("name", pdatabase.OpEqual, "C"))
	indexed, err := idx.Query(ctx, q)
	require.NoError(t, err)
	direct, err := plain.Query(ctx, q)
	require.NoError(t, err)
	require.Len(t, indexed, len(direct))
}

func TestIndexWrapperReindexesOnUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newTestDB(t, "idx_inner_db3")
	index := newTestDB(t, "idx_meta_db3")
	idx := pdatabase.NewIndexWrapper(inner, index)

	require.NoError(t, idx.Insert(ctx, "k", pdata.New(map[string]interface{}{"status": "pending"})))
	require.NoError(t, idx.Update(ctx, "k", pdata.New(map[string]interface{}{"status": "done"})))

	q := pdatabase.Select("status").Where(pdatabase.Where("status", pdatabase.OpEqual, "done"))
	results, err := idx.Query(ctx, q)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
