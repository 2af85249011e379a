package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

func TestCartCouponCheckoutFlow(t *testing.T) {
	app := newTestApp(t)
	tok := login(t, app, "9876543210")

	var cart domain.Cart
	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/cart/items", tok,
		map[string]any{"storeId": "st-pizzeria", "productId": "p-margherita", "qty": 2}, &cart))
	assert.Equal(t, 498.0, cart.Summary.Subtotal)
	assert.Equal(t, 40.0, cart.Summary.DeliveryFee)

	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/cart/coupon", tok,
		map[string]any{"storeId": "st-pizzeria", "code": "freeship"}, &cart))
	assert.Equal(t, "FREESHIP", cart.Summary.CouponCode)
	assert.Equal(t, 40.0, cart.Summary.DeliveryDiscount)

	require.Equal(t, http.StatusOK, do(t, app, "DELETE", "/api/v1/cart/coupon?storeId=st-pizzeria", tok, nil, &cart))
	assert.Equal(t, 0.0, cart.Summary.DeliveryDiscount)
	assert.Equal(t, 538.0, cart.Summary.Total)

	// delivery without an address cannot be ordered
	assert.Equal(t, http.StatusBadRequest, do(t, app, "POST", "/api/v1/orders", tok, map[string]string{"storeId": "st-pizzeria"}, nil))

	var addr domain.Address
	require.Equal(t, http.StatusCreated, do(t, app, "POST", "/api/v1/addresses", tok,
		map[string]string{"type": "home", "house": "12", "street": "Church St", "city": "Bengaluru", "pincode": "560001"}, &addr))
	assert.True(t, addr.IsDefault)
	require.Equal(t, http.StatusOK, do(t, app, "PUT", "/api/v1/cart/fulfillment", tok,
		map[string]string{"storeId": "st-pizzeria", "fulfillment": "delivery", "addressId": addr.ID}, &cart))
	assert.Equal(t, addr.ID, cart.AddressID)

	var order domain.Order
	require.Equal(t, http.StatusCreated, do(t, app, "POST", "/api/v1/orders", tok, map[string]string{"storeId": "st-pizzeria"}, &order))
	assert.Equal(t, domain.OrderPendingPayment, order.Status)
	assert.Equal(t, 538.0, order.Summary.Total)

	gw := &payment.Sandbox{Secret: testPaymentSecret}
	res, err := gw.Checkout(context.Background(), payment.Request{Amount: order.Summary.Total, Currency: order.Currency, OrderID: order.PaymentOrderID})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/orders/"+order.ID+"/payment", tok, res, &order))
	assert.Equal(t, domain.OrderPlaced, order.Status)

	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/cart?storeId=st-pizzeria", tok, nil, &cart))
	assert.Empty(t, cart.Lines)

	var history []domain.Order
	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/orders", tok, nil, &history))
	require.Len(t, history, 1)

	req := httptest.NewRequest("GET", "/api/v1/orders/"+order.ID+"/receipt", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Margherita Pizza")
	assert.Contains(t, string(body), "538.00")
}

func TestForgedPaymentIsRejected(t *testing.T) {
	app := newTestApp(t)
	tok := login(t, app, "9876543210")

	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/cart/items", tok,
		map[string]any{"storeId": "st-brew", "productId": "p-coldbrew", "qty": 1}, nil))
	require.Equal(t, http.StatusOK, do(t, app, "PUT", "/api/v1/cart/fulfillment", tok,
		map[string]string{"storeId": "st-brew", "fulfillment": "pickup"}, nil))

	var order domain.Order
	require.Equal(t, http.StatusCreated, do(t, app, "POST", "/api/v1/orders", tok, map[string]string{"storeId": "st-brew"}, &order))

	forged := payment.Result{PaymentID: "pay_forged", OrderID: order.PaymentOrderID, Signature: "00ff"}
	assert.Equal(t, http.StatusPaymentRequired, do(t, app, "POST", "/api/v1/orders/"+order.ID+"/payment", tok, forged, nil))

	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/orders/"+order.ID, tok, nil, &order))
	assert.Equal(t, domain.OrderPaymentFailed, order.Status)
}

func TestOrdersAreNotVisibleToOtherUsers(t *testing.T) {
	app := newTestApp(t)
	alice := login(t, app, "9876543210")
	bob := login(t, app, "9123456789")

	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/cart/items", alice,
		map[string]any{"storeId": "st-brew", "productId": "p-flatwhite", "qty": 1}, nil))
	require.Equal(t, http.StatusOK, do(t, app, "PUT", "/api/v1/cart/fulfillment", alice,
		map[string]string{"storeId": "st-brew", "fulfillment": "pickup"}, nil))
	var order domain.Order
	require.Equal(t, http.StatusCreated, do(t, app, "POST", "/api/v1/orders", alice, map[string]string{"storeId": "st-brew"}, &order))

	entries := captureLogs(t, func() {
		assert.Equal(t, http.StatusNotFound, do(t, app, "GET", "/api/v1/orders/"+order.ID, bob, nil, nil))
	})
	assert.NotNil(t, hasAction(entries, "access.denied.order"))

	// bob's cart at the same store is separate
	var cart domain.Cart
	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/cart?storeId=st-brew", bob, nil, &cart))
	assert.Empty(t, cart.Lines)
}

func TestWishlistAndAddresses(t *testing.T) {
	app := newTestApp(t)
	tok := login(t, app, "9876543210")

	assert.Equal(t, http.StatusNoContent, do(t, app, "PUT", "/api/v1/wishlist/p-novel", tok, nil, nil))
	assert.Equal(t, http.StatusNoContent, do(t, app, "PUT", "/api/v1/wishlist/p-novel", tok, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, "PUT", "/api/v1/wishlist/p-missing", tok, nil, nil))

	var wl []map[string]any
	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/wishlist", tok, nil, &wl))
	require.Len(t, wl, 1)
	assert.Equal(t, "p-novel", wl[0]["productId"])

	assert.Equal(t, http.StatusNoContent, do(t, app, "DELETE", "/api/v1/wishlist/p-novel", tok, nil, nil))
	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/wishlist", tok, nil, &wl))
	assert.Empty(t, wl)

	var home, work domain.Address
	require.Equal(t, http.StatusCreated, do(t, app, "POST", "/api/v1/addresses", tok, map[string]string{"type": "home", "pincode": "560001"}, &home))
	require.Equal(t, http.StatusCreated, do(t, app, "POST", "/api/v1/addresses", tok, map[string]string{"type": "work", "pincode": "560038"}, &work))

	var list []domain.Address
	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/addresses/"+work.ID+"/default", tok, nil, &list))
	require.Len(t, list, 2)
	assert.Equal(t, work.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	assert.Equal(t, http.StatusNoContent, do(t, app, "DELETE", "/api/v1/addresses/"+home.ID, tok, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, "DELETE", "/api/v1/addresses/"+home.ID, tok, nil, nil))
}
