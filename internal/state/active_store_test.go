package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/deeplink"
)

func TestActiveStoreNotifiesOnChange(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a := NewActiveStore(store)
	var seen []string
	a.OnChange(func(id string) { seen = append(seen, id) })

	require.NoError(t, a.Enter(ctx, "s1", SourceQR))
	require.NoError(t, a.Enter(ctx, "s1", SourceNavigation))
	require.NoError(t, a.Enter(ctx, "s2", SourceNavigation))
	require.NoError(t, a.Leave(ctx))
	assert.Equal(t, []string{"s1", "s2", ""}, seen)

	assert.ErrorIs(t, a.Enter(ctx, "../x", SourceQR), ErrInvalidStoreID)
}

func TestActiveStoreRestore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, NewActiveStore(store).Enter(ctx, "s9", SourceQR))

	b := NewActiveStore(store)
	var notified string
	b.OnChange(func(id string) { notified = id })
	require.NoError(t, b.Restore(ctx))
	id, src := b.Current()
	assert.Equal(t, "s9", id)
	assert.Equal(t, SourceQR, src)
	assert.Equal(t, "s9", notified)
}

func TestEnterFromLink(t *testing.T) {
	ctx := context.Background()
	a := NewActiveStore(newMemStore())

	_, ok, err := a.EnterFromLink(ctx, "app://nowhere/s1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, a.ID())

	link, ok, err := a.EnterFromLink(ctx, "app://store/s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, deeplink.StoreDetail, link.Kind)
	assert.Empty(t, a.ID(), "detail links don't start a session")

	link, ok, err = a.EnterFromLink(ctx, "app://store-home/s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, deeplink.StoreSession, link.Kind)
	id, src := a.Current()
	assert.Equal(t, "s1", id)
	assert.Equal(t, SourceDeepLink, src)
}
