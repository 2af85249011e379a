package state

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/deeplink"
	applog "storefront/internal/log"
	"storefront/internal/securestore"
	"storefront/internal/validate"
)

const (
	SourceQR         = "qr"
	SourceDeepLink   = "deeplink"
	SourceNavigation = "navigation"
)

type activeRecord struct {
	StoreID string `json:"storeId"`
	Source  string `json:"source"`
}

// ActiveStore is the store the user is currently shopping in. Listeners run
// synchronously, outside the lock, whenever the store id changes.
type ActiveStore struct {
	mu        sync.Mutex
	store     securestore.Store
	cur       activeRecord
	listeners []func(storeID string)
}

func NewActiveStore(store securestore.Store) *ActiveStore {
	return &ActiveStore{store: store}
}

func (a *ActiveStore) OnChange(fn func(storeID string)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

// ID returns the active store id, "" when none.
func (a *ActiveStore) ID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cur.StoreID
}

func (a *ActiveStore) Current() (storeID, source string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cur.StoreID, a.cur.Source
}

func (a *ActiveStore) Enter(ctx context.Context, storeID, source string) error {
	id, ok := validate.ID(storeID)
	if !ok {
		return ErrInvalidStoreID
	}
	switch source {
	case SourceQR, SourceDeepLink, SourceNavigation:
	default:
		source = SourceNavigation
	}
	return a.set(ctx, activeRecord{StoreID: id, Source: source})
}

func (a *ActiveStore) Leave(ctx context.Context) error {
	return a.set(ctx, activeRecord{})
}

func (a *ActiveStore) set(ctx context.Context, rec activeRecord) error {
	var err error
	if rec.StoreID == "" {
		err = a.store.Delete(ctx, securestore.KeyActiveStore)
	} else {
		err = saveJSON(ctx, a.store, securestore.KeyActiveStore, rec)
	}
	if err != nil {
		return err
	}

	a.mu.Lock()
	changed := a.cur.StoreID != rec.StoreID
	a.cur = rec
	listeners := append([]func(string){}, a.listeners...)
	a.mu.Unlock()

	if changed {
		applog.Info(nil, "store.active.change", map[string]any{"store_id": rec.StoreID, "source": rec.Source})
		for _, fn := range listeners {
			fn(rec.StoreID)
		}
	}
	return nil
}

// EnterFromLink enters the store named by a store-home link. A store detail
// link is resolved but leaves the session alone. ok=false means the link was
// malformed and nothing changed.
func (a *ActiveStore) EnterFromLink(ctx context.Context, raw string) (deeplink.Link, bool, error) {
	link, ok := deeplink.Parse(raw)
	if !ok {
		applog.Info(nil, "deeplink.ignored", map[string]any{"link": raw})
		return deeplink.Link{}, false, nil
	}
	if link.Kind == deeplink.StoreSession {
		if err := a.Enter(ctx, link.StoreID, SourceDeepLink); err != nil {
			return link, true, err
		}
	}
	return link, true, nil
}

// Restore reloads the persisted store and notifies listeners.
func (a *ActiveStore) Restore(ctx context.Context) error {
	var rec activeRecord
	found, err := loadJSON(ctx, a.store, securestore.KeyActiveStore, &rec)
	if err != nil || !found {
		return err
	}
	if _, ok := validate.ID(rec.StoreID); !ok {
		return errors.Join(ErrInvalidStoreID, a.store.Delete(ctx, securestore.KeyActiveStore))
	}
	return a.set(ctx, rec)
}
