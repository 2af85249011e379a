package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the handle so services can run multi-repo transactions.
func (r *OrderRepo) DB() *sqlx.DB { return r.db }

type OrderRow struct {
	ID               string  `db:"id"`
	UserID           string  `db:"user_id"`
	StoreID          string  `db:"store_id"`
	StoreName        string  `db:"store_name"`
	Fulfillment      string  `db:"fulfillment"`
	AddressID        string  `db:"address_id"`
	Subtotal         float64 `db:"subtotal"`
	ItemDiscount     float64 `db:"item_discount"`
	CouponDiscount   float64 `db:"coupon_discount"`
	DeliveryFee      float64 `db:"delivery_fee"`
	DeliveryDiscount float64 `db:"delivery_discount"`
	Total            float64 `db:"total"`
	CouponCode       string  `db:"coupon_code"`
	Currency         string  `db:"currency"`
	Status           string  `db:"status"`
	PaymentOrderID   string  `db:"payment_order_id"`
	PaymentID        string  `db:"payment_id"`
	CreatedAt        string  `db:"created_at"`
}

// ToDomain merges the header with its lines.
func (o OrderRow) ToDomain(lines []domain.CartLine) domain.Order {
	return domain.Order{
		ID: o.ID, StoreID: o.StoreID, StoreName: o.StoreName, UserID: o.UserID,
		Fulfillment: o.Fulfillment, AddressID: o.AddressID, Lines: lines,
		Summary: domain.CartSummary{
			Subtotal: o.Subtotal, ItemDiscount: o.ItemDiscount, CouponDiscount: o.CouponDiscount,
			DeliveryFee: o.DeliveryFee, DeliveryDiscount: o.DeliveryDiscount, Total: o.Total,
			CouponCode: o.CouponCode,
		},
		Status: o.Status, Currency: o.Currency,
		PaymentOrderID: o.PaymentOrderID, PaymentID: o.PaymentID, CreatedAt: o.CreatedAt,
	}
}

// Create inserts a new order header inside tx.
func (r *OrderRepo) Create(tx *sqlx.Tx, o OrderRow) error {
	_, err := tx.NamedExec(`
	  INSERT INTO orders
	    (id, user_id, store_id, fulfillment, address_id, subtotal, item_discount, coupon_discount,
	     delivery_fee, delivery_discount, total, coupon_code, currency, status, payment_order_id, created_at)
	  VALUES
	    (:id, :user_id, :store_id, :fulfillment, :address_id, :subtotal, :item_discount, :coupon_discount,
	     :delivery_fee, :delivery_discount, :total, :coupon_code, :currency, :status, :payment_order_id, CURRENT_TIMESTAMP)
	`, o)
	return err
}

// InsertItem inserts a single line item inside tx.
func (r *OrderRepo) InsertItem(tx *sqlx.Tx, orderID string, l domain.CartLine) error {
	_, err := tx.Exec(`
	  INSERT INTO order_items(order_id, product_id, name, qty, price)
	  VALUES(?, ?, ?, ?, ?)
	`, orderID, l.ProductID, l.Name, l.Quantity, l.UnitPrice)
	return err
}

const orderSelect = `
	SELECT o.id, o.user_id, o.store_id, COALESCE(s.name,'') AS store_name, o.fulfillment, o.address_id,
	       o.subtotal, o.item_discount, o.coupon_discount, o.delivery_fee, o.delivery_discount, o.total,
	       o.coupon_code, o.currency, o.status, o.payment_order_id, o.payment_id, o.created_at
	FROM orders o LEFT JOIN stores s ON s.id = o.store_id`

func (r *OrderRepo) Get(orderID string) (OrderRow, []domain.CartLine, error) {
	var o OrderRow
	if err := r.db.Get(&o, orderSelect+` WHERE o.id = ?`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	items := []domain.CartLine{}
	if err := r.db.Select(&items, `
		SELECT product_id, name, '' AS image_url, qty, price AS unit_price, (qty * price) AS line_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY name
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

// ListByUser returns orders for a given user, newest first.
func (r *OrderRepo) ListByUser(userID string, limit int) ([]OrderRow, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []OrderRow{}
	err := r.db.Select(&out, orderSelect+`
		WHERE o.user_id = ?
		ORDER BY datetime(o.created_at) DESC
		LIMIT ?`, userID, limit)
	return out, err
}

// UpdatePayment moves a PENDING_PAYMENT order to status, recording the payment id.
func (r *OrderRepo) UpdatePayment(id, status, paymentID string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = ?, payment_id = ? WHERE id = ? AND status = 'PENDING_PAYMENT'`,
		status, paymentID, id)
	if err != nil {
		return err
	}
	return oneRow(res, "order "+id)
}
