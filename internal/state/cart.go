package state

import (
	"context"
	"sync"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type CartAPI interface {
	Cart(ctx context.Context, storeID string) (*domain.Cart, error)
	AddToCart(ctx context.Context, storeID, productID string, qty int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, storeID, productID string, qty int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, storeID, productID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, storeID string) (*domain.Cart, error)
	ApplyCoupon(ctx context.Context, storeID, code string) (*domain.Cart, error)
	RemoveCoupon(ctx context.Context, storeID string) (*domain.Cart, error)
	SetFulfillment(ctx context.Context, storeID, mode, addressID string) (*domain.Cart, error)
}

// Cart caches the server cart of the active store. Every call is numbered;
// a server response replaces the cache only if nothing issued later has
// already been applied and the active store hasn't changed meanwhile.
type Cart struct {
	mu      sync.Mutex
	api     CartAPI
	storeID string
	cart    *domain.Cart
	issued  uint64
	applied uint64

	// confirmed is the last server cart, without optimistic coupon marks;
	// marked is the seq of the newest coupon call that marked the cache.
	confirmed *domain.Cart
	marked    uint64
}

func NewCart(client CartAPI) *Cart { return &Cart{api: client} }

// Get returns a copy of the cached cart if it belongs to storeID.
func (c *Cart) Get(storeID string) *domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cart == nil || c.cart.StoreID != storeID {
		return nil
	}
	return c.cart.Clone()
}

// Current is Get for the active store.
func (c *Cart) Current() *domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cart == nil || c.cart.StoreID != c.storeID {
		return nil
	}
	return c.cart.Clone()
}

// OnStoreChanged is registered as an ActiveStore listener.
func (c *Cart) OnStoreChanged(storeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeID = storeID
	if c.cart != nil && c.cart.StoreID != storeID {
		c.cart, c.confirmed = nil, nil
	}
}

// Reset drops the cache and any in-flight responses.
func (c *Cart) Reset() {
	c.mu.Lock()
	c.cart, c.confirmed = nil, nil
	c.applied = c.issued
	c.mu.Unlock()
}

// begin numbers a call against the active store.
func (c *Cart) begin() (storeID string, seq uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storeID == "" {
		return "", 0, ErrNoActiveStore
	}
	c.issued++
	return c.storeID, c.issued, nil
}

// commit applies a server cart under the ordering rule. It reports whether
// the cart was applied.
func (c *Cart) commit(storeID string, seq uint64, cart *domain.Cart) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied || storeID != c.storeID {
		applog.Debug(nil, "cart.response.stale", map[string]any{"store_id": storeID, "seq": seq, "applied": c.applied})
		return false
	}
	c.cart = cart.Clone()
	if c.cart.StoreID == "" {
		c.cart.StoreID = storeID
	}
	c.confirmed = c.cart.Clone()
	c.applied = seq
	return true
}

type cartCall func(ctx context.Context, storeID string) (*domain.Cart, error)

// mutate runs call and caches its result. On failure the previous cart
// is left untouched and the error is returned for a retry.
func (c *Cart) mutate(ctx context.Context, action string, call cartCall) (*domain.Cart, error) {
	sid, seq, err := c.begin()
	if err != nil {
		return nil, err
	}
	cart, err := call(ctx, sid)
	if err != nil {
		applog.Error(nil, action+".fail", err, map[string]any{"store_id": sid})
		return nil, err
	}
	c.commit(sid, seq, cart)
	return cart, nil
}

func (c *Cart) Refresh(ctx context.Context) (*domain.Cart, error) {
	return c.mutate(ctx, "cart.refresh", c.api.Cart)
}

func (c *Cart) AddItem(ctx context.Context, productID string, qty int) (*domain.Cart, error) {
	pid, ok := validate.ID(productID)
	if !ok {
		return nil, ErrInvalidProductID
	}
	if qty < 1 || qty > validate.MaxQty {
		return nil, ErrInvalidQuantity
	}
	return c.mutate(ctx, "cart.add", func(ctx context.Context, sid string) (*domain.Cart, error) {
		return c.api.AddToCart(ctx, sid, pid, qty)
	})
}

// UpdateQuantity sets an absolute quantity; 0 removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, qty int) (*domain.Cart, error) {
	pid, ok := validate.ID(productID)
	if !ok {
		return nil, ErrInvalidProductID
	}
	if qty < 0 || qty > validate.MaxQty {
		return nil, ErrInvalidQuantity
	}
	if qty == 0 {
		return c.RemoveItem(ctx, pid)
	}
	return c.mutate(ctx, "cart.update", func(ctx context.Context, sid string) (*domain.Cart, error) {
		return c.api.UpdateCartItem(ctx, sid, pid, qty)
	})
}

func (c *Cart) RemoveItem(ctx context.Context, productID string) (*domain.Cart, error) {
	pid, ok := validate.ID(productID)
	if !ok {
		return nil, ErrInvalidProductID
	}
	return c.mutate(ctx, "cart.remove", func(ctx context.Context, sid string) (*domain.Cart, error) {
		return c.api.RemoveCartItem(ctx, sid, pid)
	})
}

func (c *Cart) Clear(ctx context.Context) (*domain.Cart, error) {
	return c.mutate(ctx, "cart.clear", c.api.ClearCart)
}

func (c *Cart) SetFulfillment(ctx context.Context, mode, addressID string) (*domain.Cart, error) {
	mode, ok := validate.Fulfillment(mode)
	if !ok {
		return nil, ErrInvalidFulfillment
	}
	switch mode {
	case domain.FulfillmentPickup:
		addressID = ""
	case domain.FulfillmentDelivery:
		id, ok := validate.ID(addressID)
		if !ok {
			return nil, ErrAddressRequired
		}
		addressID = id
	}
	return c.mutate(ctx, "cart.fulfillment", func(ctx context.Context, sid string) (*domain.Cart, error) {
		return c.api.SetFulfillment(ctx, sid, mode, addressID)
	})
}

// ApplyCoupon marks code on the cached cart straight away, then confirms it
// with the server. A rejected code restores the last server cart, unless a
// newer server cart or a newer coupon call has taken over the cache.
func (c *Cart) ApplyCoupon(ctx context.Context, code string) (*domain.Cart, error) {
	code, ok := validate.CouponCode(code)
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return c.optimistic(ctx, "cart.coupon.apply", code, func(ctx context.Context, sid string) (*domain.Cart, error) {
		return c.api.ApplyCoupon(ctx, sid, code)
	})
}

func (c *Cart) RemoveCoupon(ctx context.Context) (*domain.Cart, error) {
	return c.optimistic(ctx, "cart.coupon.remove", "", c.api.RemoveCoupon)
}

func (c *Cart) optimistic(ctx context.Context, action, code string, call cartCall) (*domain.Cart, error) {
	c.mu.Lock()
	if c.storeID == "" {
		c.mu.Unlock()
		return nil, ErrNoActiveStore
	}
	sid := c.storeID
	c.issued++
	seq := c.issued
	base := c.applied
	if c.cart != nil && c.cart.StoreID == sid {
		c.cart.Summary.CouponCode = code
		c.marked = seq
	}
	c.mu.Unlock()

	cart, err := call(ctx, sid)
	if err != nil {
		c.mu.Lock()
		if c.applied == base && c.marked == seq && sid == c.storeID {
			c.cart = c.confirmed.Clone()
		}
		c.mu.Unlock()
		applog.Info(nil, action+".rollback", map[string]any{"store_id": sid, "code": code, "err": err.Error()})
		return nil, err
	}
	c.commit(sid, seq, cart)
	return cart, nil
}
