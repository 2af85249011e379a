package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavRoutesOnePerStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := NewFavRoutes(store)
	f.now = func() time.Time { return time.UnixMilli(1700000000000) }

	r, added, err := f.Add(ctx, "s1", "Pizza Point", "")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "s1-1700000000000", r.ID)

	again, added, err := f.Add(ctx, "s1", "Pizza Point (renamed)", "")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, r.ID, again.ID)
	assert.Len(t, f.List(), 1)
	assert.True(t, f.Has("s1"))

	restored := NewFavRoutes(store)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, f.List()[0].ID, restored.List()[0].ID)
}

func TestFavRoutesRemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	f := NewFavRoutes(newMemStore())
	_, _, err := f.Add(ctx, "s1", "A", "")
	require.NoError(t, err)
	_, _, err = f.Add(ctx, "s2", "B", "")
	require.NoError(t, err)
	before := f.List()

	require.NoError(t, f.Remove(ctx, "missing-1"))
	assert.Equal(t, before, f.List())

	require.NoError(t, f.Remove(ctx, before[0].ID))
	after := f.List()
	require.Len(t, after, 1)
	assert.Equal(t, "s2", after[0].StoreID)
	assert.False(t, f.Has("s1"))
}

func TestFavRoutesRejectsBadStoreID(t *testing.T) {
	_, _, err := NewFavRoutes(newMemStore()).Add(context.Background(), "", "x", "")
	assert.ErrorIs(t, err, ErrInvalidStoreID)
}

func TestFavRoutesUnchangedWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	_, _, err := NewFavRoutes(mem).Add(ctx, "s1", "A", "")
	require.NoError(t, err)

	f := NewFavRoutes(failingStore{mem})
	require.NoError(t, f.Load(ctx))
	before := f.List()
	require.Len(t, before, 1)

	_, added, err := f.Add(ctx, "s2", "B", "")
	assert.Error(t, err)
	assert.False(t, added)
	assert.False(t, f.Has("s2"))

	assert.Error(t, f.Remove(ctx, before[0].ID))
	assert.Equal(t, before, f.List())
}
