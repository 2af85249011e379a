// Package app assembles the client: api client, secure storage and the state
// containers, with the listeners that keep them consistent.
package app

import (
	"context"
	"errors"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/geo"
	applog "storefront/internal/log"
	"storefront/internal/payment"
	"storefront/internal/securestore"
	"storefront/internal/state"
)

// Screens the shell is asked to show.
const (
	ScreenEntry          = "entry"
	ScreenLocationPicker = "location"
)

var ErrLocationRequired = errors.New("choose a location first")

type App struct {
	API      *api.Client
	Storage  securestore.Store
	Geo      geo.Provider
	Payments payment.Gateway

	Auth     *state.Auth
	Active   *state.ActiveStore
	Cart     *state.Cart
	Search   *state.Search
	Favs     *state.FavRoutes
	Location *state.Location
	Wishlist *state.Wishlist

	// Navigate is called when state forces a screen change (logout, missing
	// location). The terminal shell prints it; tests record it.
	Navigate func(screen string)

	closers []func() error
}

// New wires an App over an already opened store.
func New(cfg config.Config, store securestore.Store, geocoder geo.Provider, gw payment.Gateway) *App {
	client := api.New(api.Config{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	a := &App{
		API:      client,
		Storage:  store,
		Geo:      geocoder,
		Payments: gw,
		Active:   state.NewActiveStore(store),
		Cart:     state.NewCart(client),
		Search:   state.NewSearch(client, store, cfg.SearchDebounce),
		Favs:     state.NewFavRoutes(store),
		Location: state.NewLocation(store),
		Wishlist: state.NewWishlist(client),
		Navigate: func(screen string) { applog.Info(nil, "app.navigate", map[string]any{"screen": screen}) },
	}
	a.Auth = state.NewAuth(client, store, cfg.TokenCheckInterval)
	client.SetToken(a.Auth.Token)

	a.Active.OnChange(a.Cart.OnStoreChanged)
	a.Active.OnChange(func(string) { a.Search.PerformSearch("") })
	a.Auth.OnLogout(a.onLogout)
	return a
}

// Open builds the configured secure store and an App on top of it.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	store, closeStore, err := securestore.Open(ctx, cfg.StorageBackend, cfg.StorageDSN, cfg.RedisURL, cfg.StorageKey)
	if err != nil {
		return nil, err
	}
	gw := &payment.Sandbox{Secret: cfg.PaymentSecret}
	a := New(cfg, store, geo.NewNominatim(cfg.GeocoderURL, cfg.RequestTimeout), gw)
	a.closers = append(a.closers, closeStore)
	return a, nil
}

func (a *App) onLogout() {
	a.Cart.Reset()
	a.Wishlist.Reset()
	a.Navigate(ScreenEntry)
}

// Restore reloads every persisted container. The validity check starts when
// a live session comes back.
func (a *App) Restore(ctx context.Context) error {
	err := errors.Join(
		a.Auth.Restore(ctx),
		a.Active.Restore(ctx),
		a.Location.Restore(ctx),
		a.Favs.Load(ctx),
		a.Search.Load(ctx),
	)
	if err != nil {
		return err
	}
	if a.Auth.IsAuthenticated() {
		return a.Auth.StartValidityCheck()
	}
	return nil
}

// SignIn completes the OTP login and loads the wishlist.
func (a *App) SignIn(ctx context.Context, phone, otp string) (domain.User, error) {
	u, err := a.Auth.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return domain.User{}, err
	}
	if err := a.Auth.StartValidityCheck(); err != nil {
		return u, err
	}
	if err := a.Wishlist.Load(ctx); err != nil {
		applog.Error(nil, "wishlist.load.fail", err, nil)
	}
	return u, nil
}

// NearbyStores lists stores around the current location.
func (a *App) NearbyStores(ctx context.Context, radiusKm float64) ([]domain.Store, error) {
	loc, ok := a.Location.Current()
	if !ok {
		a.Navigate(ScreenLocationPicker)
		return nil, ErrLocationRequired
	}
	return a.API.NearbyStores(ctx, loc.Lat, loc.Lng, radiusKm)
}

// UseSearchedPlace geocodes q and stores the best match as the location.
func (a *App) UseSearchedPlace(ctx context.Context, q string) (domain.Location, error) {
	matches, err := a.Geo.Geocode(ctx, q)
	if err != nil {
		return domain.Location{}, err
	}
	if len(matches) == 0 {
		return domain.Location{}, geo.ErrNoResults
	}
	loc := matches[0]
	loc.Source = domain.LocationSearch
	if err := a.Location.Set(ctx, loc); err != nil {
		return domain.Location{}, err
	}
	cur, _ := a.Location.Current()
	return cur, nil
}

// UseCurrentPosition stores a device fix, reverse-geocoded.
func (a *App) UseCurrentPosition(ctx context.Context, lat, lng float64) (domain.Location, error) {
	return a.Location.SetFromCoordinates(ctx, a.Geo, lat, lng)
}

func (a *App) Close() error {
	a.Search.Close()
	a.Auth.Stop()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
