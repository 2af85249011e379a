package app

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/payment"
	"storefront/internal/state"
)

var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrFulfillmentRequired = errors.New("choose delivery or pickup")
)

// Checkout places an order for the active store's cart, pays for it through
// the gateway and has the backend verify the payment. Gateway and
// verification failures come back as *payment.Error.
func (a *App) Checkout(ctx context.Context) (domain.Order, error) {
	sid := a.Active.ID()
	if sid == "" {
		return domain.Order{}, state.ErrNoActiveStore
	}
	cart := a.Cart.Current()
	if cart == nil {
		var err error
		if cart, err = a.Cart.Refresh(ctx); err != nil {
			return domain.Order{}, err
		}
	}
	if cart.ItemCount() == 0 {
		return domain.Order{}, ErrCartEmpty
	}
	switch cart.Fulfillment {
	case domain.FulfillmentPickup:
	case domain.FulfillmentDelivery:
		if cart.AddressID == "" {
			return domain.Order{}, state.ErrAddressRequired
		}
	default:
		return domain.Order{}, ErrFulfillmentRequired
	}

	order, err := a.API.PlaceOrder(ctx, sid)
	if err != nil {
		return domain.Order{}, err
	}
	applog.Info(nil, "checkout.order.placed", map[string]any{"order_id": order.ID, "total": order.Summary.Total})

	user, _ := a.Auth.User()
	res, err := a.Payments.Checkout(ctx, payment.Request{
		Amount:   order.Summary.Total,
		Currency: order.Currency,
		OrderID:  order.PaymentOrderID,
		Phone:    user.Phone,
	})
	if err != nil {
		var pe *payment.Error
		if !errors.As(err, &pe) {
			err = &payment.Error{Code: payment.CodeNetwork, Reason: err.Error()}
		}
		applog.Info(nil, "checkout.payment.fail", map[string]any{"order_id": order.ID, "err": err.Error()})
		return order, err
	}

	confirmed, err := a.API.ConfirmPayment(ctx, order.ID, res)
	if err != nil {
		var ae *api.Error
		if errors.As(err, &ae) && ae.Status == http.StatusPaymentRequired {
			err = &payment.Error{Code: payment.CodeVerifyMismatch, Reason: ae.Message}
		}
		applog.Info(nil, "checkout.verify.fail", map[string]any{"order_id": order.ID, "err": err.Error()})
		return order, err
	}

	a.Cart.Reset()
	if _, err := a.Cart.Refresh(ctx); err != nil {
		applog.Error(nil, "checkout.cart.refresh.fail", err, map[string]any{"store_id": sid})
	}
	return confirmed, nil
}
