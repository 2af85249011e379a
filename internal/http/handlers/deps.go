package handlers

import (
	"time"

	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	StoreHandler     *StoreHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	AddressHandler   *AddressHandler
	WishlistHandler  *WishlistHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	couponRepo := repos.NewCouponRepo(db)
	addrRepo := repos.NewAddressRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	wishRepo := repos.NewWishlistRepo(db)
	reviewRepo := repos.NewReviewRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, cfg.DevOTP)
	catalogSvc := services.NewCatalogService(storeRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo, storeRepo, couponRepo, addrRepo)
	orderSvc := services.NewOrderService(cartSvc, orderRepo, prodRepo, storeRepo, cfg.PaymentSecret, cfg.Currency)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		StoreHandler:     &StoreHandler{Catalog: catalogSvc, Reviews: services.NewReviewService(reviewRepo, storeRepo)},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: services.NewInventoryService(prodRepo)},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		AddressHandler:   &AddressHandler{Addrs: services.NewAddressService(addrRepo)},
		WishlistHandler:  &WishlistHandler{Wish: services.NewWishlistService(wishRepo, prodRepo)},
	}
}

// Register mounts the JSON API on r (normally the /api/v1 group).
func (d *Deps) Register(r fiber.Router) {
	otpLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|otp"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.otp.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, please try again later"})
		},
	})
	r.Post("/auth/otp", otpLimiter, d.AuthHandler.RequestOTP)
	r.Post("/auth/verify", otpLimiter, d.AuthHandler.Verify)

	r.Get("/stores", d.StoreHandler.Nearby)
	r.Get("/stores/popular", d.StoreHandler.Popular)
	r.Get("/stores/:id", d.StoreHandler.Get)
	r.Get("/stores/:id/products", d.StoreHandler.Products)
	r.Get("/stores/:id/reviews", d.StoreHandler.ListReviews)
	r.Get("/search", limiter.New(limiter.Config{Max: 60, Expiration: time.Minute}), d.SearchHandler.Search)
	r.Get("/products/:id/availability", d.InventoryHandler.Check)

	auth := RequireUser(d.Auth)
	r.Get("/me", auth, d.AuthHandler.Me)
	r.Put("/me", auth, d.AuthHandler.UpdateMe)

	r.Post("/stores/:id/reviews", auth, d.StoreHandler.AddReview)
	r.Post("/stores/:id/report", auth, d.StoreHandler.Report)

	r.Get("/cart", auth, d.CartHandler.View)
	r.Delete("/cart", auth, d.CartHandler.Clear)
	r.Post("/cart/items", auth, d.CartHandler.Add)
	r.Put("/cart/items/:productId", auth, d.CartHandler.Update)
	r.Delete("/cart/items/:productId", auth, d.CartHandler.Remove)
	r.Post("/cart/coupon", auth, d.CartHandler.ApplyCoupon)
	r.Delete("/cart/coupon", auth, d.CartHandler.RemoveCoupon)
	r.Put("/cart/fulfillment", auth, d.CartHandler.SetFulfillment)
	r.Get("/coupons", auth, d.CartHandler.Coupons)

	r.Post("/orders", auth, d.OrderHandler.Place)
	r.Get("/orders", auth, d.OrderHandler.History)
	r.Get("/orders/:id", auth, d.OrderHandler.Get)
	r.Post("/orders/:id/payment", auth, d.OrderHandler.Confirm)
	r.Get("/orders/:id/receipt", auth, d.OrderHandler.Receipt)

	r.Get("/addresses", auth, d.AddressHandler.List)
	r.Post("/addresses", auth, d.AddressHandler.Create)
	r.Put("/addresses/:id", auth, d.AddressHandler.Update)
	r.Delete("/addresses/:id", auth, d.AddressHandler.Delete)
	r.Post("/addresses/:id/default", auth, d.AddressHandler.SetDefault)

	r.Get("/wishlist", auth, d.WishlistHandler.List)
	r.Put("/wishlist/:productId", auth, d.WishlistHandler.Save)
	r.Delete("/wishlist/:productId", auth, d.WishlistHandler.Unsave)
}
