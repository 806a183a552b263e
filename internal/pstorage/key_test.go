package pstorage_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

func TestStoragePathOps(t *testing.T) {
	t.Parallel()

	p, err := pstorage.NewStoragePath("a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, "c.txt", p.Name())
	require.Equal(t, ".txt", p.Suffix())
	require.Equal(t, pstorage.StoragePath("a/b"), p.Parent())
	require.Equal(t, []string{"a", "b", "c.txt"}, p.Parts())
	require.True(t, p.Prefix("a"))
	require.False(t, p.Prefix("a/bb"))
}

func TestStoragePathRejectsTraversal(t *testing.T) {
	t.Parallel()
	_, err := pstorage.NewStoragePath("../etc/passwd")
	require.Error(t, err)
}

func TestStorageKeyEqualityAndHash(t *testing.T) {
	t.Parallel()

	client := pstorage.NewStorageClientKey("memory", "abc")
	p, _ := pstorage.NewStoragePath("x/y")
	k1 := pstorage.NewStorageKey(client, p)
	k2 := pstorage.NewStorageKey(client, p)
	require.True(t, k1.Equal(k2))
	require.Equal(t, k1.Hash(), k2.Hash())

	other := pstorage.NewStorageKey(pstorage.NewStorageClientKey("memory", "def"), p)
	require.False(t, k1.Equal(other))
}

func TestStorageKeyJSONShape(t *testing.T) {
	t.Parallel()
	client := pstorage.NewStorageClientKey("local", "u1")
	p, _ := pstorage.NewStoragePath("dir/file")
	key := pstorage.NewStorageKey(client, p)

	data, err := json.Marshal(key)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "local@u1", raw["storage"])
	require.Equal(t, "dir/file", raw["path"])

	var roundtrip pstorage.StorageKey
	require.NoError(t, json.Unmarshal(data, &roundtrip))
	require.True(t, roundtrip.Equal(key))
}

func TestParseStorageKey(t *testing.T) {
	t.Parallel()
	client := pstorage.NewStorageClientKey("memory", "u2")
	p, _ := pstorage.NewStoragePath("a/b")
	key := pstorage.NewStorageKey(client, p)

	parsed, err := pstorage.ParseStorageKey(key.String())
	require.NoError(t, err)
	require.True(t, parsed.Equal(key))
}
