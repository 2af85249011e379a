package services

import (
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repos"

	"github.com/google/uuid"
)

type OrderService struct {
	Cart          *CartService
	Orders        *repos.OrderRepo
	Prods         *repos.ProductRepo
	Stores        *repos.StoreRepo
	PaymentSecret string
	Currency      string
}

func NewOrderService(cart *CartService, orders *repos.OrderRepo, prods *repos.ProductRepo,
	stores *repos.StoreRepo, paymentSecret, currency string) *OrderService {
	if currency == "" {
		currency = "INR"
	}
	return &OrderService{Cart: cart, Orders: orders, Prods: prods, Stores: stores,
		PaymentSecret: paymentSecret, Currency: currency}
}

// Place turns the user's cart at storeID into a PENDING_PAYMENT order and
// reserves stock. The cart is kept until payment is confirmed.
func (s *OrderService) Place(userID, storeID string) (domain.Order, error) {
	cart, err := s.Cart.View(userID, storeID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart.Lines) == 0 {
		return domain.Order{}, ErrCartEmpty
	}
	if cart.Fulfillment == domain.FulfillmentDelivery && cart.AddressID == "" {
		return domain.Order{}, ErrAddressRequired
	}

	row := repos.OrderRow{
		ID:               uuid.NewString(),
		UserID:           userID,
		StoreID:          storeID,
		Fulfillment:      cart.Fulfillment,
		AddressID:        cart.AddressID,
		Subtotal:         cart.Summary.Subtotal,
		ItemDiscount:     cart.Summary.ItemDiscount,
		CouponDiscount:   cart.Summary.CouponDiscount,
		DeliveryFee:      cart.Summary.DeliveryFee,
		DeliveryDiscount: cart.Summary.DeliveryDiscount,
		Total:            cart.Summary.Total,
		CouponCode:       cart.Summary.CouponCode,
		Currency:         s.Currency,
		Status:           domain.OrderPendingPayment,
		PaymentOrderID:   payment.NewOrderID(),
	}

	tx, err := s.Orders.DB().Beginx()
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range cart.Lines {
		ok, err := s.Prods.Decrement(tx, l.ProductID, l.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		if !ok {
			return domain.Order{}, fmt.Errorf("%s: %w", l.Name, ErrOutOfStock)
		}
	}
	if err := s.Orders.Create(tx, row); err != nil {
		return domain.Order{}, err
	}
	for _, l := range cart.Lines {
		if err := s.Orders.InsertItem(tx, row.ID, l); err != nil {
			return domain.Order{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	return s.Get(userID, row.ID)
}

// ConfirmPayment verifies the gateway signature. A match marks the order
// PLACED and empties the cart; a mismatch marks it PAYMENT_FAILED and
// releases the reserved stock.
func (s *OrderService) ConfirmPayment(userID, orderID string, res payment.Result) (domain.Order, error) {
	o, err := s.Get(userID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.OrderPendingPayment {
		return o, ErrOrderState
	}

	if res.OrderID != o.PaymentOrderID || !payment.Verify(s.PaymentSecret, res) {
		if err := s.Orders.UpdatePayment(o.ID, domain.OrderPaymentFailed, res.PaymentID); err != nil {
			return o, err
		}
		for _, l := range o.Lines {
			if err := s.Prods.Restock(l.ProductID, l.Quantity); err != nil {
				return o, err
			}
		}
		return o, ErrPaymentVerification
	}

	if err := s.Orders.UpdatePayment(o.ID, domain.OrderPlaced, res.PaymentID); err != nil {
		return o, err
	}
	if _, err := s.Cart.Clear(userID, o.StoreID); err != nil {
		return o, err
	}
	if err := s.Stores.BumpPopularity(o.StoreID); err != nil {
		return o, err
	}
	return s.Get(userID, orderID)
}

// Get returns the order only if it belongs to userID.
func (s *OrderService) Get(userID, orderID string) (domain.Order, error) {
	row, lines, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, notFound(err, "order "+orderID)
	}
	if row.UserID != userID {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return row.ToDomain(lines), nil
}

func (s *OrderService) History(userID string, limit int) ([]domain.Order, error) {
	rows, err := s.Orders.ListByUser(userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain(nil))
	}
	return out, nil
}
