package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the behavior every Store must share.
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "epoch-001", []byte("alpha")))
	require.NoError(t, store.Put(ctx, "epoch-002", []byte("beta")))
	require.NoError(t, store.Put(ctx, "final", []byte("gamma")))

	data, err := store.Get(ctx, "epoch-001")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), data)

	// Put overwrites.
	require.NoError(t, store.Put(ctx, "epoch-001", []byte("alpha2")))
	data, err = store.Get(ctx, "epoch-001")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha2"), data)

	names, err := store.List(ctx, "epoch-")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"epoch-001", "epoch-002"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Delete(ctx, "epoch-002"))
	_, err = store.Get(ctx, "epoch-002")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	assert.NoError(t, store.Delete(ctx, "epoch-002"))
}

func TestMemoryStore_Contract(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestLocalStore_Contract(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	testStoreContract(t, store)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	buf := []byte("original")
	require.NoError(t, store.Put(ctx, "blob", buf))
	buf[0] = 'X'

	data, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestLocalStore_NestedNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "run-7/epoch-001", []byte("nested")))

	data, err := store.Get(ctx, "run-7/epoch-001")
	require.NoError(t, err)
	assert.Equal(t, []byte("nested"), data)

	names, err := store.List(ctx, "run-7/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-7/epoch-001"}, names)
}
