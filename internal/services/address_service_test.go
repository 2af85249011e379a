package services

import (
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults(t *testing.T, list []domain.Address) []string {
	t.Helper()
	var ids []string
	for _, a := range list {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestAddressDefaultIsExclusive(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "9876543210")

	home, err := f.addrs.Create(u.ID, domain.Address{Type: "Home", Pincode: "560001", City: "Bengaluru"})
	require.NoError(t, err)
	assert.True(t, home.IsDefault)
	work, err := f.addrs.Create(u.ID, domain.Address{Type: "work", Pincode: "560038"})
	require.NoError(t, err)
	assert.False(t, work.IsDefault)

	require.NoError(t, f.addrs.SetDefault(u.ID, work.ID))
	list, err := f.addrs.List(u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{work.ID}, defaults(t, list))

	require.NoError(t, f.addrs.Delete(u.ID, work.ID))
	list, err = f.addrs.List(u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{home.ID}, defaults(t, list))
}

func TestAddressValidationAndOwnership(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "9876543210")
	_, err := f.addrs.Create(u.ID, domain.Address{Type: "castle", Pincode: "560001"})
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = f.addrs.Create(u.ID, domain.Address{Type: "home", Pincode: "12"})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	a, err := f.addrs.Create(u.ID, domain.Address{Type: "home", Pincode: "560001"})
	require.NoError(t, err)
	other := f.user(t, "9123456789")
	assert.ErrorIs(t, f.addrs.SetDefault(other.ID, a.ID), ErrNotFound)
	assert.ErrorIs(t, f.addrs.Delete(other.ID, a.ID), ErrNotFound)

	a.Street = "Church St"
	got, err := f.addrs.Update(u.ID, a.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Church St", got.Street)
}

func TestReviewsUpdateRating(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "9876543210")
	svc := NewReviewService(repos.NewReviewRepo(f.db), f.stores)

	_, err := svc.Add(u.ID, "st-books", 9, "")
	assert.ErrorIs(t, err, ErrInvalidReview)
	_, err = svc.Add(u.ID, "st-books", 3, "ok")
	require.NoError(t, err)

	st, err := f.catalog.Store("st-books")
	require.NoError(t, err)
	assert.Equal(t, 3.0, st.Rating)

	list, err := svc.List("st-books", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Customer", list[0].UserName)

	require.NoError(t, svc.Report(u.ID, "st-books", "closed permanently"))
	assert.ErrorIs(t, svc.Report(u.ID, "st-none", "x"), ErrNotFound)
}
