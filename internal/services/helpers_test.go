package services

import (
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sqlx.DB
	users   *repos.UserRepo
	prods   *repos.ProductRepo
	stores  *repos.StoreRepo
	addrs   *AddressService
	cart    *CartService
	orders  *OrderService
	catalog *CatalogService
}

const testPaymentSecret = "test-payment-secret"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:     db,
		users:  repos.NewUserRepo(db),
		prods:  repos.NewProductRepo(db),
		stores: repos.NewStoreRepo(db),
	}
	f.addrs = NewAddressService(repos.NewAddressRepo(db))
	f.cart = NewCartService(repos.NewCartRepo(db), f.prods, f.stores, repos.NewCouponRepo(db), repos.NewAddressRepo(db))
	f.orders = NewOrderService(f.cart, repos.NewOrderRepo(db), f.prods, f.stores, testPaymentSecret, "INR")
	f.catalog = NewCatalogService(f.stores, f.prods)
	return f
}

func (f *fixture) user(t *testing.T, phone string) *domain.User {
	t.Helper()
	u, err := f.users.EnsureByPhone(phone)
	require.NoError(t, err)
	return u
}
