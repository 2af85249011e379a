package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
)

type fakeWishlistAPI struct {
	saved map[string]bool
	err   error
}

func (f *fakeWishlistAPI) Wishlist(context.Context) ([]api.WishlistItem, error) {
	var out []api.WishlistItem
	for id := range f.saved {
		out = append(out, api.WishlistItem{ProductID: id})
	}
	return out, nil
}

func (f *fakeWishlistAPI) SaveToWishlist(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.saved[id] = true
	return nil
}

func (f *fakeWishlistAPI) RemoveFromWishlist(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.saved, id)
	return nil
}

func TestWishlistToggle(t *testing.T) {
	ctx := context.Background()
	fake := &fakeWishlistAPI{saved: map[string]bool{"p1": true}}
	w := NewWishlist(fake)
	require.NoError(t, w.Load(ctx))
	assert.True(t, w.Contains("p1"))

	saved, err := w.Toggle(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, fake.saved["p2"])

	saved, err = w.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.False(t, w.Contains("p1"))
}

func TestWishlistToggleRevertsOnFailure(t *testing.T) {
	ctx := context.Background()
	fake := &fakeWishlistAPI{saved: map[string]bool{}, err: errOffline}
	w := NewWishlist(fake)

	saved, err := w.Toggle(ctx, "p1")
	assert.ErrorIs(t, err, errOffline)
	assert.False(t, saved)
	assert.False(t, w.Contains("p1"))

	fake.err = nil
	fake.saved["p2"] = true
	require.NoError(t, w.Load(ctx))
	before := w.Items()
	require.Len(t, before, 1)

	fake.err = errOffline
	saved, err = w.Toggle(ctx, "p2")
	assert.ErrorIs(t, err, errOffline)
	assert.True(t, saved)
	assert.True(t, w.Contains("p2"))
	assert.Equal(t, before, w.Items(), "failed remove puts the entry back")

	w.Reset()
	assert.False(t, w.Contains("p2"))
}
