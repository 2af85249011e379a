package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/securestore"
	"storefront/internal/validate"

	"github.com/golang-jwt/jwt/v5"
	"github.com/robfig/cron/v3"
)

type AuthAPI interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (api.Session, error)
}

// Auth is the signed-in session. The token's expiry is read locally from its
// claims; the signature is the server's business.
type Auth struct {
	mu            sync.Mutex
	api           AuthAPI
	store         securestore.Store
	token         string
	user          *domain.User
	authenticated bool
	listeners     []func()

	interval time.Duration
	sched    *cron.Cron
	now      func() time.Time
}

func NewAuth(client AuthAPI, store securestore.Store, checkInterval time.Duration) *Auth {
	if checkInterval <= 0 {
		checkInterval = 5 * time.Minute
	}
	return &Auth{api: client, store: store, interval: checkInterval, now: time.Now}
}

// OnLogout registers fn to run after every logout, forced or not.
func (a *Auth) OnLogout(fn func()) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *Auth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated
}

// Token is the bearer token for api calls, "" when signed out.
func (a *Auth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *Auth) User() (domain.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return domain.User{}, false
	}
	return *a.user, true
}

func (a *Auth) RequestOTP(ctx context.Context, phone string) (string, error) {
	p, ok := validate.Phone(phone)
	if !ok {
		return "", ErrInvalidPhone
	}
	return p, a.api.RequestOTP(ctx, p)
}

// VerifyOTP exchanges the code for a session and logs in with it.
func (a *Auth) VerifyOTP(ctx context.Context, phone, otp string) (domain.User, error) {
	p, ok := validate.Phone(phone)
	if !ok {
		return domain.User{}, ErrInvalidPhone
	}
	code, ok := validate.OTP(otp)
	if !ok {
		return domain.User{}, ErrInvalidOTP
	}
	sess, err := a.api.VerifyOTP(ctx, p, code)
	if err != nil {
		return domain.User{}, err
	}
	if err := a.Login(ctx, sess.Token, sess.User); err != nil {
		return domain.User{}, err
	}
	return sess.User, nil
}

// Login persists the session and marks the user signed in. Nothing changes
// if storage fails.
func (a *Auth) Login(ctx context.Context, token string, user domain.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := a.store.Set(ctx, securestore.KeyAuthToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := saveJSON(ctx, a.store, securestore.KeyAuthUser, user); err != nil {
		_ = a.store.Delete(ctx, securestore.KeyAuthToken)
		return err
	}
	a.mu.Lock()
	a.token, a.user, a.authenticated = token, &user, true
	a.mu.Unlock()
	applog.Info(nil, "auth.login", map[string]any{"user_id": user.ID})
	return nil
}

// Logout clears the session in memory and storage, halts the validity
// check, then runs the logout listeners. Storage errors are returned after
// the in-memory state is gone.
func (a *Auth) Logout(ctx context.Context) error {
	err := errors.Join(
		a.store.Delete(ctx, securestore.KeyAuthToken),
		a.store.Delete(ctx, securestore.KeyAuthUser),
	)
	a.mu.Lock()
	a.token, a.user, a.authenticated = "", nil, false
	listeners := append([]func(){}, a.listeners...)
	sched := a.sched
	a.sched = nil
	a.mu.Unlock()

	// a forced logout runs inside the job, so don't wait for it here
	if sched != nil {
		sched.Stop()
	}

	applog.Info(nil, "auth.logout", nil)
	for _, fn := range listeners {
		fn()
	}
	return err
}

// IsStoredTokenValid decodes the persisted token and checks its expiry.
// A missing, undecodable or exp-less token is not valid.
func (a *Auth) IsStoredTokenValid(ctx context.Context) bool {
	tok, err := a.store.Get(ctx, securestore.KeyAuthToken)
	if err != nil || tok == "" {
		return false
	}
	return !tokenExpired(tok, a.now())
}

func tokenExpired(tok string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// Restore loads the persisted session. An expired token is discarded.
func (a *Auth) Restore(ctx context.Context) error {
	tok, err := a.store.Get(ctx, securestore.KeyAuthToken)
	if errors.Is(err, securestore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if tokenExpired(tok, a.now()) {
		applog.Info(nil, "auth.restore.expired", nil)
		return errors.Join(
			a.store.Delete(ctx, securestore.KeyAuthToken),
			a.store.Delete(ctx, securestore.KeyAuthUser),
		)
	}
	var user domain.User
	if _, err := loadJSON(ctx, a.store, securestore.KeyAuthUser, &user); err != nil {
		return err
	}
	a.mu.Lock()
	a.token, a.user, a.authenticated = tok, &user, true
	a.mu.Unlock()
	return nil
}

// CheckValidity forces a logout when the stored token has expired. It
// reports whether the session is still good.
func (a *Auth) CheckValidity(ctx context.Context) bool {
	if !a.IsAuthenticated() {
		return false
	}
	if a.IsStoredTokenValid(ctx) {
		return true
	}
	applog.Info(nil, "auth.token.expired", nil)
	if err := a.Logout(ctx); err != nil {
		applog.Error(nil, "auth.logout.fail", err, nil)
	}
	return false
}

// StartValidityCheck runs CheckValidity on a schedule until logout or Stop.
// It does nothing while signed out.
func (a *Auth) StartValidityCheck() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched != nil || !a.authenticated {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", a.interval), func() {
		a.CheckValidity(context.Background())
	}); err != nil {
		return err
	}
	c.Start()
	a.sched = c
	return nil
}

// Running reports whether the validity check is scheduled.
func (a *Auth) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched != nil
}

// Stop halts the validity check and waits for a running check to finish.
func (a *Auth) Stop() {
	a.mu.Lock()
	c := a.sched
	a.sched = nil
	a.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
