package state

import (
	"context"
	"sync"

	"storefront/internal/api"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type WishlistAPI interface {
	Wishlist(ctx context.Context) ([]api.WishlistItem, error)
	SaveToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
}

// Wishlist tracks saved product ids. Toggle flips locally first and reverts
// if the server refuses.
type Wishlist struct {
	mu    sync.Mutex
	api   WishlistAPI
	saved map[string]bool
	items []api.WishlistItem
}

func NewWishlist(client WishlistAPI) *Wishlist {
	return &Wishlist{api: client, saved: map[string]bool{}}
}

func (w *Wishlist) Load(ctx context.Context) error {
	items, err := w.api.Wishlist(ctx)
	if err != nil {
		return err
	}
	saved := make(map[string]bool, len(items))
	for _, it := range items {
		saved[it.ProductID] = true
	}
	w.mu.Lock()
	w.items, w.saved = items, saved
	w.mu.Unlock()
	return nil
}

func (w *Wishlist) Items() []api.WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]api.WishlistItem(nil), w.items...)
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saved[productID]
}

// Toggle returns the new saved state.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	pid, ok := validate.ID(productID)
	if !ok {
		return false, ErrInvalidProductID
	}
	w.mu.Lock()
	was := w.saved[pid]
	var removed []api.WishlistItem
	if was {
		removed = w.remove(pid)
	} else {
		w.saved[pid] = true
	}
	w.mu.Unlock()

	var err error
	if was {
		err = w.api.RemoveFromWishlist(ctx, pid)
	} else {
		err = w.api.SaveToWishlist(ctx, pid)
	}
	if err != nil {
		w.mu.Lock()
		if was {
			w.saved[pid] = true
			w.items = append(w.items, removed...)
		} else {
			delete(w.saved, pid)
		}
		w.mu.Unlock()
		applog.Info(nil, "wishlist.toggle.rollback", map[string]any{"product": pid, "err": err.Error()})
		return was, err
	}
	return !was, nil
}

// remove drops pid and returns the entries it took out.
func (w *Wishlist) remove(pid string) []api.WishlistItem {
	delete(w.saved, pid)
	var kept, removed []api.WishlistItem
	for _, it := range w.items {
		if it.ProductID == pid {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	w.items = kept
	return removed
}

// Reset forgets everything (logout).
func (w *Wishlist) Reset() {
	w.mu.Lock()
	w.saved = map[string]bool{}
	w.items = nil
	w.mu.Unlock()
}
