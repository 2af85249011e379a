package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type fakeReverser struct{ err error }

func (f fakeReverser) Reverse(_ context.Context, lat, lng float64) (domain.Location, error) {
	if f.err != nil {
		return domain.Location{}, f.err
	}
	return domain.Location{City: "Bengaluru", Pincode: "560001", Country: "India", FullAddress: "MG Road"}, nil
}

func TestLocationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := NewLocation(store)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.NeedsSelection())
	require.NoError(t, l.Set(ctx, domain.Location{Pincode: "560001", Lat: 12.97, Lng: 77.59}))
	assert.False(t, l.NeedsSelection())
	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, domain.LocationManual, cur.Source)
	assert.Equal(t, fixed, cur.UpdatedAt)

	restored := NewLocation(store)
	require.NoError(t, restored.Restore(ctx))
	assert.True(t, restored.IsSet())

	require.NoError(t, l.Clear(ctx))
	assert.False(t, l.IsSet())
	other := NewLocation(store)
	require.NoError(t, other.Restore(ctx))
	assert.True(t, other.NeedsSelection())
}

func TestLocationRejectsBadCoordinates(t *testing.T) {
	l := NewLocation(newMemStore())
	assert.ErrorIs(t, l.Set(context.Background(), domain.Location{Lat: 91}), ErrInvalidLocation)
	assert.ErrorIs(t, l.Set(context.Background(), domain.Location{}), ErrInvalidLocation)
	assert.False(t, l.IsSet())
}

func TestSetFromCoordinates(t *testing.T) {
	ctx := context.Background()
	l := NewLocation(newMemStore())
	loc, err := l.SetFromCoordinates(ctx, fakeReverser{}, 12.97, 77.59)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationCurrent, loc.Source)
	assert.Equal(t, "560001", loc.Pincode)
	assert.InDelta(t, 12.97, loc.Lat, 1e-9)

	_, err = NewLocation(newMemStore()).SetFromCoordinates(ctx, fakeReverser{err: errors.New("no fix")}, 1, 1)
	assert.Error(t, err)
}

func TestLocationStorageFailure(t *testing.T) {
	l := NewLocation(failingStore{newMemStore()})
	err := l.Set(context.Background(), domain.Location{Pincode: "560001", Lat: 1, Lng: 1})
	assert.Error(t, err)
	assert.False(t, l.IsSet())
}
