package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartScopedToActiveStore(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	active := NewActiveStore(newMemStore())
	cart := NewCart(fake)
	active.OnChange(cart.OnStoreChanged)

	require.NoError(t, active.Enter(ctx, "storeA", SourceNavigation))
	_, err := cart.AddItem(ctx, "p1", 2)
	require.NoError(t, err)
	require.NotNil(t, cart.Get("storeA"))

	require.NoError(t, active.Enter(ctx, "storeB", SourceQR))
	assert.Nil(t, cart.Get("storeB"), "B must stay empty until fetched")
	assert.Nil(t, cart.Get("storeA"), "A lines are dropped on switch")
	assert.Nil(t, cart.Current())

	got, err := cart.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "storeB", got.StoreID)
	assert.Empty(t, got.Lines)
	assert.Empty(t, cart.Get("storeB").Lines)
}

func TestCartNeedsActiveStore(t *testing.T) {
	cart := NewCart(newFakeCartAPI())
	_, err := cart.AddItem(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, ErrNoActiveStore)
}

func TestCartFailureKeepsPreviousCart(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")

	_, err := cart.AddItem(ctx, "p1", 1)
	require.NoError(t, err)

	fake.hook = func(string) error { return errOffline }
	_, err = cart.AddItem(ctx, "p2", 1)
	assert.ErrorIs(t, err, errOffline)

	c := cart.Get("s1")
	require.NotNil(t, c)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p1", c.Lines[0].ProductID)
}

func TestCartValidatesBeforeCalling(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	fake.hook = func(op string) error {
		t.Fatalf("unexpected api call %s", op)
		return nil
	}
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")

	_, err := cart.AddItem(ctx, "", 1)
	assert.ErrorIs(t, err, ErrInvalidProductID)
	_, err = cart.AddItem(ctx, "p1", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = cart.UpdateQuantity(ctx, "p1", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = cart.ApplyCoupon(ctx, "a b")
	assert.ErrorIs(t, err, ErrInvalidCoupon)
	_, err = cart.SetFulfillment(ctx, "drone", "")
	assert.ErrorIs(t, err, ErrInvalidFulfillment)
	_, err = cart.SetFulfillment(ctx, "delivery", "")
	assert.ErrorIs(t, err, ErrAddressRequired)
}

func TestCartUpdateToZeroRemoves(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(newFakeCartAPI())
	cart.OnStoreChanged("s1")
	_, err := cart.AddItem(ctx, "p1", 3)
	require.NoError(t, err)

	c, err := cart.UpdateQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestPickupClearsAddress(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(newFakeCartAPI())
	cart.OnStoreChanged("s1")

	c, err := cart.SetFulfillment(ctx, "delivery", "addr1")
	require.NoError(t, err)
	assert.Equal(t, "addr1", c.AddressID)

	c, err = cart.SetFulfillment(ctx, "pickup", "addr1")
	require.NoError(t, err)
	assert.Equal(t, "pickup", c.Fulfillment)
	assert.Empty(t, c.AddressID)
}

func TestCartLastIssuedWins(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")

	// the refresh is held until the add has been applied
	release := make(chan struct{})
	fake.hook = func(op string) error {
		if op == "get" {
			<-release
		}
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = cart.Refresh(ctx)
	}()
	// wait until the held call has been numbered
	require.Eventually(t, func() bool {
		cart.mu.Lock()
		defer cart.mu.Unlock()
		return cart.issued == 1
	}, timeout, tick)

	_, err := cart.AddItem(ctx, "p1", 1)
	require.NoError(t, err)
	close(release)
	wg.Wait()

	c := cart.Get("s1")
	require.NotNil(t, c)
	assert.Len(t, c.Lines, 1, "the older empty response must not overwrite the newer one")
}

func TestCartDropsResponseAfterStoreSwitch(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")

	release := make(chan struct{})
	fake.hook = func(string) error { <-release; return nil }

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cart.AddItem(ctx, "p1", 1)
	}()
	require.Eventually(t, func() bool {
		cart.mu.Lock()
		defer cart.mu.Unlock()
		return cart.issued == 1
	}, timeout, tick)

	cart.OnStoreChanged("s2")
	close(release)
	<-done

	assert.Nil(t, cart.Get("s1"))
	assert.Nil(t, cart.Current())
}

func TestCouponOptimisticRollback(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")
	_, err := cart.AddItem(ctx, "p1", 3)
	require.NoError(t, err)
	before := cart.Get("s1")

	// while the server is deciding, the code already shows locally
	release := make(chan struct{})
	fake.hook = func(op string) error {
		if op == "coupon" {
			<-release
		}
		return nil
	}
	errCh := make(chan error, 1)
	go func() {
		_, err := cart.ApplyCoupon(ctx, "bogus1")
		errCh <- err
	}()
	require.Eventually(t, func() bool {
		c := cart.Get("s1")
		return c != nil && c.Summary.CouponCode == "BOGUS1"
	}, timeout, tick)
	close(release)

	require.Error(t, <-errCh)
	assert.Equal(t, before, cart.Get("s1"), "rejected coupon restores the snapshot")

	fake.hook = nil
	c, err := cart.ApplyCoupon(ctx, "save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", c.Summary.CouponCode)

	c, err = cart.RemoveCoupon(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Summary.CouponCode)
}

func TestCartResetDropsEverything(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(newFakeCartAPI())
	cart.OnStoreChanged("s1")
	_, err := cart.AddItem(ctx, "p1", 1)
	require.NoError(t, err)

	cart.Reset()
	assert.Nil(t, cart.Get("s1"))
}

func TestCouponFailureKeepsNewerServerCart(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")

	addGate, couponGate := make(chan struct{}), make(chan struct{})
	fake.hook = func(op string) error {
		switch op {
		case "add":
			<-addGate
		case "coupon":
			<-couponGate
			return errOffline
		}
		return nil
	}
	issued := func(n uint64) func() bool {
		return func() bool {
			cart.mu.Lock()
			defer cart.mu.Unlock()
			return cart.issued == n
		}
	}

	addDone := make(chan error, 1)
	go func() {
		_, err := cart.AddItem(ctx, "p1", 1)
		addDone <- err
	}()
	require.Eventually(t, issued(1), timeout, tick)

	couponDone := make(chan error, 1)
	go func() {
		_, err := cart.ApplyCoupon(ctx, "save10")
		couponDone <- err
	}()
	require.Eventually(t, issued(2), timeout, tick)

	close(addGate)
	require.NoError(t, <-addDone)
	close(couponGate)
	assert.ErrorIs(t, <-couponDone, errOffline)

	server, err := fake.Cart(ctx, "s1")
	require.NoError(t, err)
	c := cart.Get("s1")
	require.NotNil(t, c)
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, server, c)
}

func TestOverlappingCouponFailuresRestoreServerCart(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCartAPI()
	cart := NewCart(fake)
	cart.OnStoreChanged("s1")
	_, err := cart.AddItem(ctx, "p1", 1)
	require.NoError(t, err)
	before := cart.Get("s1")

	var mu sync.Mutex
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	arrived := make(chan struct{}, 2)
	calls := 0
	fake.hook = func(op string) error {
		if op != "coupon" {
			return nil
		}
		mu.Lock()
		gate := gates[calls]
		calls++
		mu.Unlock()
		arrived <- struct{}{}
		<-gate
		return errOffline
	}

	first, second := make(chan error, 1), make(chan error, 1)
	go func() {
		_, err := cart.ApplyCoupon(ctx, "bogus1")
		first <- err
	}()
	<-arrived
	go func() {
		_, err := cart.ApplyCoupon(ctx, "bogus2")
		second <- err
	}()
	<-arrived

	close(gates[0])
	assert.ErrorIs(t, <-first, errOffline)
	assert.Equal(t, "BOGUS2", cart.Get("s1").Summary.CouponCode, "the pending newer code stays marked")

	close(gates[1])
	assert.ErrorIs(t, <-second, errOffline)
	assert.Equal(t, before, cart.Get("s1"))
}
