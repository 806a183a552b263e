package pstorage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

func TestIsReserved(t *testing.T) {
	t.Parallel()

	reserved, err := pstorage.NewStoragePath("dir/._head.json")
	require.NoError(t, err)
	require.True(t, pstorage.IsReserved(reserved))

	normal, err := pstorage.NewStoragePath("dir/file.txt")
	require.NoError(t, err)
	require.False(t, pstorage.IsReserved(normal))
}
