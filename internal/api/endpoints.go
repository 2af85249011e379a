package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type WishlistItem struct {
	ProductID string  `json:"productId"`
	StoreID   string  `json:"storeId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Active    bool    `json:"active"`
}

func storeQuery(storeID string) url.Values { return url.Values{"storeId": {storeID}} }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// auth

func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	return c.do(ctx, http.MethodPost, "/auth/otp", nil, map[string]string{"phone": phone}, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth/verify", nil, map[string]string{"phone": phone, "otp": otp}, &s)
	return s, err
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodGet, "/me", nil, nil, &u)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, name, email string) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodPut, "/me", nil, map[string]string{"name": name, "email": email}, &u)
	return u, err
}

// catalog

func (c *Client) NearbyStores(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Store, error) {
	q := url.Values{"lat": {ftoa(lat)}, "lng": {ftoa(lng)}}
	if radiusKm > 0 {
		q.Set("radiusKm", ftoa(radiusKm))
	}
	var out []domain.Store
	err := c.do(ctx, http.MethodGet, "/stores", q, nil, &out)
	return out, err
}

func (c *Client) PopularStores(ctx context.Context, limit int) ([]domain.Store, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []domain.Store
	err := c.do(ctx, http.MethodGet, "/stores/popular", q, nil, &out)
	return out, err
}

func (c *Client) Store(ctx context.Context, id string) (domain.Store, error) {
	var s domain.Store
	err := c.do(ctx, http.MethodGet, "/stores/"+url.PathEscape(id), nil, nil, &s)
	return s, err
}

func (c *Client) Products(ctx context.Context, storeID string, page, pageSize int) ([]domain.Product, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	var out []domain.Product
	err := c.do(ctx, http.MethodGet, "/stores/"+url.PathEscape(storeID)+"/products", q, nil, &out)
	return out, err
}

func (c *Client) Reviews(ctx context.Context, storeID string) ([]domain.Review, error) {
	var out []domain.Review
	err := c.do(ctx, http.MethodGet, "/stores/"+url.PathEscape(storeID)+"/reviews", nil, nil, &out)
	return out, err
}

func (c *Client) AddReview(ctx context.Context, storeID string, rating int, comment string) (domain.Review, error) {
	var rv domain.Review
	err := c.do(ctx, http.MethodPost, "/stores/"+url.PathEscape(storeID)+"/reviews", nil,
		map[string]any{"rating": rating, "comment": comment}, &rv)
	return rv, err
}

func (c *Client) ReportStore(ctx context.Context, storeID, reason string) error {
	return c.do(ctx, http.MethodPost, "/stores/"+url.PathEscape(storeID)+"/report", nil,
		map[string]string{"reason": reason}, nil)
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchItem, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.SearchItem
	err := c.do(ctx, http.MethodGet, "/search", q, nil, &out)
	return out, err
}

func (c *Client) Availability(ctx context.Context, productID, storeID string) (domain.Availability, error) {
	var a domain.Availability
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID)+"/availability", storeQuery(storeID), nil, &a)
	return a, err
}

// cart

type cartBody struct {
	StoreID     string `json:"storeId"`
	ProductID   string `json:"productId,omitempty"`
	Qty         int    `json:"qty"`
	Code        string `json:"code,omitempty"`
	Fulfillment string `json:"fulfillment,omitempty"`
	AddressID   string `json:"addressId,omitempty"`
}

func (c *Client) cartCall(ctx context.Context, method, path string, q url.Values, body any) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, method, path, q, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) Cart(ctx context.Context, storeID string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", storeQuery(storeID), nil)
}

func (c *Client) AddToCart(ctx context.Context, storeID, productID string, qty int) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/items", nil, cartBody{StoreID: storeID, ProductID: productID, Qty: qty})
}

func (c *Client) UpdateCartItem(ctx context.Context, storeID, productID string, qty int) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(productID), nil, cartBody{StoreID: storeID, Qty: qty})
}

func (c *Client) RemoveCartItem(ctx context.Context, storeID, productID string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(productID), storeQuery(storeID), nil)
}

func (c *Client) ClearCart(ctx context.Context, storeID string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart", storeQuery(storeID), nil)
}

func (c *Client) ApplyCoupon(ctx context.Context, storeID, code string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/coupon", nil, cartBody{StoreID: storeID, Code: code})
}

func (c *Client) RemoveCoupon(ctx context.Context, storeID string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/coupon", storeQuery(storeID), nil)
}

func (c *Client) SetFulfillment(ctx context.Context, storeID, mode, addressID string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/fulfillment", nil,
		cartBody{StoreID: storeID, Fulfillment: mode, AddressID: addressID})
}

func (c *Client) Coupons(ctx context.Context, storeID string) ([]domain.Coupon, error) {
	var out []domain.Coupon
	err := c.do(ctx, http.MethodGet, "/coupons", storeQuery(storeID), nil, &out)
	return out, err
}

// orders

func (c *Client) PlaceOrder(ctx context.Context, storeID string) (domain.Order, error) {
	var o domain.Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, map[string]string{"storeId": storeID}, &o)
	return o, err
}

func (c *Client) ConfirmPayment(ctx context.Context, orderID string, res payment.Result) (domain.Order, error) {
	var o domain.Order
	err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/payment", nil, res, &o)
	return o, err
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &o)
	return o, err
}

// Receipt returns the rendered HTML receipt.
func (c *Client) Receipt(ctx context.Context, id string) ([]byte, error) {
	var page []byte
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id)+"/receipt", nil, nil, &page)
	return page, err
}

// addresses

func (c *Client) Addresses(ctx context.Context) ([]domain.Address, error) {
	var out []domain.Address
	err := c.do(ctx, http.MethodGet, "/addresses", nil, nil, &out)
	return out, err
}

func (c *Client) CreateAddress(ctx context.Context, a domain.Address) (domain.Address, error) {
	var out domain.Address
	err := c.do(ctx, http.MethodPost, "/addresses", nil, a, &out)
	return out, err
}

func (c *Client) UpdateAddress(ctx context.Context, a domain.Address) (domain.Address, error) {
	var out domain.Address
	err := c.do(ctx, http.MethodPut, "/addresses/"+url.PathEscape(a.ID), nil, a, &out)
	return out, err
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/addresses/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, id string) ([]domain.Address, error) {
	var out []domain.Address
	err := c.do(ctx, http.MethodPost, "/addresses/"+url.PathEscape(id)+"/default", nil, nil, &out)
	return out, err
}

// wishlist

func (c *Client) Wishlist(ctx context.Context) ([]WishlistItem, error) {
	var out []WishlistItem
	err := c.do(ctx, http.MethodGet, "/wishlist", nil, nil, &out)
	return out, err
}

func (c *Client) SaveToWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPut, "/wishlist/"+url.PathEscape(productID), nil, nil, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, nil, nil)
}
