// Package state holds the client-side containers: the session, the active
// store with its cart, search, favorite routes, location and wishlist.
// Each container guards its own fields with a mutex, persists through a
// securestore.Store, and never holds its lock across a network call.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/securestore"
)

var (
	ErrNoActiveStore      = errors.New("no active store")
	ErrInvalidStoreID     = errors.New("invalid store id")
	ErrInvalidProductID   = errors.New("invalid product id")
	ErrInvalidQuantity    = errors.New("quantity must be between 0 and 50")
	ErrInvalidCoupon      = errors.New("invalid coupon code")
	ErrInvalidFulfillment = errors.New("fulfillment must be delivery or pickup")
	ErrAddressRequired    = errors.New("delivery requires an address")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidOTP         = errors.New("otp must be 6 digits")
	ErrInvalidLocation    = errors.New("invalid location")
	ErrEmptyToken         = errors.New("empty token")
)

// loadJSON decodes key into v. found=false when the key was never stored.
func loadJSON(ctx context.Context, s securestore.Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, securestore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, s securestore.Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
