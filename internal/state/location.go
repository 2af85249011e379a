package state

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/securestore"
)

// Reverser resolves coordinates into an address.
type Reverser interface {
	Reverse(ctx context.Context, lat, lng float64) (domain.Location, error)
}

// Location is the single "current" delivery location.
type Location struct {
	mu  sync.Mutex
	st  securestore.Store
	loc *domain.Location
	now func() time.Time
}

func NewLocation(store securestore.Store) *Location {
	return &Location{st: store, now: time.Now}
}

func validLocation(l domain.Location) bool {
	if l.Lat < -90 || l.Lat > 90 || l.Lng < -180 || l.Lng > 180 {
		return false
	}
	if l.Lat == 0 && l.Lng == 0 && l.Pincode == "" && l.FullAddress == "" {
		return false
	}
	return true
}

func (l *Location) Set(ctx context.Context, loc domain.Location) error {
	if !validLocation(loc) {
		return ErrInvalidLocation
	}
	switch loc.Source {
	case domain.LocationCurrent, domain.LocationSearch, domain.LocationSaved, domain.LocationManual:
	default:
		loc.Source = domain.LocationManual
	}
	loc.UpdatedAt = l.now()
	if err := saveJSON(ctx, l.st, securestore.KeyLocation, loc); err != nil {
		return err
	}
	l.mu.Lock()
	l.loc = &loc
	l.mu.Unlock()
	return nil
}

// SetFromCoordinates reverse-geocodes a device fix and stores it.
func (l *Location) SetFromCoordinates(ctx context.Context, r Reverser, lat, lng float64) (domain.Location, error) {
	loc, err := r.Reverse(ctx, lat, lng)
	if err != nil {
		return domain.Location{}, err
	}
	loc.Lat, loc.Lng, loc.Source = lat, lng, domain.LocationCurrent
	if err := l.Set(ctx, loc); err != nil {
		return domain.Location{}, err
	}
	cur, _ := l.Current()
	return cur, nil
}

func (l *Location) Clear(ctx context.Context) error {
	if err := l.st.Delete(ctx, securestore.KeyLocation); err != nil {
		return err
	}
	l.mu.Lock()
	l.loc = nil
	l.mu.Unlock()
	return nil
}

func (l *Location) Current() (domain.Location, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loc == nil {
		return domain.Location{}, false
	}
	return *l.loc, true
}

func (l *Location) IsSet() bool {
	_, ok := l.Current()
	return ok
}

// NeedsSelection gates screens that require a location.
func (l *Location) NeedsSelection() bool { return !l.IsSet() }

func (l *Location) Restore(ctx context.Context) error {
	var loc domain.Location
	found, err := loadJSON(ctx, l.st, securestore.KeyLocation, &loc)
	if err != nil || !found {
		return err
	}
	l.mu.Lock()
	l.loc = &loc
	l.mu.Unlock()
	return nil
}
