package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/securestore"
)

var errOffline = errors.New("offline")

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newMemStore() *securestore.Memory { return securestore.NewMemory() }

// failingStore fails every write.
type failingStore struct{ securestore.Store }

func (failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func (failingStore) Delete(context.Context, string) error { return errors.New("disk full") }

// fakeCartAPI keeps one server cart per store; hook lets a test block or fail a call.
type fakeCartAPI struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	hook  func(op string) error
}

func newFakeCartAPI() *fakeCartAPI { return &fakeCartAPI{carts: map[string]*domain.Cart{}} }

func (f *fakeCartAPI) run(op, storeID string, mut func(c *domain.Cart) error) (*domain.Cart, error) {
	if f.hook != nil {
		if err := f.hook(op); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[storeID]
	if !ok {
		c = &domain.Cart{StoreID: storeID, Fulfillment: domain.FulfillmentDelivery}
		f.carts[storeID] = c
	}
	if mut != nil {
		if err := mut(c); err != nil {
			return nil, err
		}
	}
	sub := 0.0
	for _, l := range c.Lines {
		sub += l.LinePrice
	}
	c.Summary.Subtotal = sub
	c.Summary.Total = sub
	return c.Clone(), nil
}

func (f *fakeCartAPI) Cart(_ context.Context, sid string) (*domain.Cart, error) {
	return f.run("get", sid, nil)
}

func (f *fakeCartAPI) AddToCart(_ context.Context, sid, pid string, qty int) (*domain.Cart, error) {
	return f.run("add", sid, func(c *domain.Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ProductID == pid {
				c.Lines[i].Quantity += qty
				c.Lines[i].LinePrice = float64(c.Lines[i].Quantity) * c.Lines[i].UnitPrice
				return nil
			}
		}
		c.Lines = append(c.Lines, domain.CartLine{ProductID: pid, Name: pid, Quantity: qty, UnitPrice: 100, LinePrice: float64(qty) * 100})
		return nil
	})
}

func (f *fakeCartAPI) UpdateCartItem(_ context.Context, sid, pid string, qty int) (*domain.Cart, error) {
	return f.run("update", sid, func(c *domain.Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ProductID == pid {
				c.Lines[i].Quantity = qty
				c.Lines[i].LinePrice = float64(qty) * c.Lines[i].UnitPrice
			}
		}
		return nil
	})
}

func (f *fakeCartAPI) RemoveCartItem(_ context.Context, sid, pid string) (*domain.Cart, error) {
	return f.run("remove", sid, func(c *domain.Cart) error {
		kept := c.Lines[:0]
		for _, l := range c.Lines {
			if l.ProductID != pid {
				kept = append(kept, l)
			}
		}
		c.Lines = kept
		return nil
	})
}

func (f *fakeCartAPI) ClearCart(_ context.Context, sid string) (*domain.Cart, error) {
	return f.run("clear", sid, func(c *domain.Cart) error {
		c.Lines = nil
		c.Summary.CouponCode = ""
		return nil
	})
}

func (f *fakeCartAPI) ApplyCoupon(_ context.Context, sid, code string) (*domain.Cart, error) {
	return f.run("coupon", sid, func(c *domain.Cart) error {
		if code != "SAVE10" {
			return &api.Error{Status: 400, Message: "coupon is not valid"}
		}
		c.Summary.CouponCode = code
		return nil
	})
}

func (f *fakeCartAPI) RemoveCoupon(_ context.Context, sid string) (*domain.Cart, error) {
	return f.run("uncoupon", sid, func(c *domain.Cart) error {
		c.Summary.CouponCode = ""
		return nil
	})
}

func (f *fakeCartAPI) SetFulfillment(_ context.Context, sid, mode, addr string) (*domain.Cart, error) {
	return f.run("fulfillment", sid, func(c *domain.Cart) error {
		c.Fulfillment, c.AddressID = mode, addr
		return nil
	})
}
