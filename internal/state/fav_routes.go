package state

import (
	"context"
	"strconv"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/securestore"
	"storefront/internal/validate"
)

// FavRoutes is the user's list of favorite stores, one entry per store.
type FavRoutes struct {
	mu     sync.Mutex
	store  securestore.Store
	routes []domain.FavRoute
	now    func() time.Time
}

func NewFavRoutes(store securestore.Store) *FavRoutes {
	return &FavRoutes{store: store, now: time.Now}
}

func (f *FavRoutes) Load(ctx context.Context) error {
	var routes []domain.FavRoute
	if _, err := loadJSON(ctx, f.store, securestore.KeyFavRoutes, &routes); err != nil {
		return err
	}
	f.mu.Lock()
	f.routes = routes
	f.mu.Unlock()
	return nil
}

func (f *FavRoutes) List() []domain.FavRoute {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FavRoute(nil), f.routes...)
}

func (f *FavRoutes) Has(storeID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexOfStore(storeID) >= 0
}

func (f *FavRoutes) indexOfStore(storeID string) int {
	for i, r := range f.routes {
		if r.StoreID == storeID {
			return i
		}
	}
	return -1
}

// Add appends a route for storeID unless one exists. added=false means the
// store was already a favorite and nothing changed. The list only changes
// once it has been saved.
func (f *FavRoutes) Add(ctx context.Context, storeID, name, imageURL string) (route domain.FavRoute, added bool, err error) {
	sid, ok := validate.ID(storeID)
	if !ok {
		return domain.FavRoute{}, false, ErrInvalidStoreID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOfStore(sid); i >= 0 {
		return f.routes[i], false, nil
	}
	now := f.now()
	route = domain.FavRoute{
		ID:        sid + "-" + strconv.FormatInt(now.UnixMilli(), 10),
		StoreID:   sid,
		Name:      name,
		ImageURL:  imageURL,
		CreatedAt: now,
	}
	next := append(append(make([]domain.FavRoute, 0, len(f.routes)+1), f.routes...), route)
	if err := saveJSON(ctx, f.store, securestore.KeyFavRoutes, next); err != nil {
		return domain.FavRoute{}, false, err
	}
	f.routes = next
	return route, true, nil
}

// Remove drops the route with id; an unknown id is a no-op.
func (f *FavRoutes) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := -1
	for i, r := range f.routes {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	next := append(append(make([]domain.FavRoute, 0, len(f.routes)-1), f.routes[:idx]...), f.routes[idx+1:]...)
	if err := saveJSON(ctx, f.store, securestore.KeyFavRoutes, next); err != nil {
		return err
	}
	f.routes = next
	return nil
}
