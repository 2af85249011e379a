package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartRow is the cart header for one (user, store) pair.
type CartRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	StoreID     string `db:"store_id"`
	CouponCode  string `db:"coupon_code"`
	Fulfillment string `db:"fulfillment"`
	AddressID   string `db:"address_id"`
}

type CartItemRow struct {
	ProductID  string  `db:"product_id"`
	Name       string  `db:"name"`
	ImageURL   string  `db:"image_url"`
	Qty        int     `db:"qty"`
	PriceAtAdd float64 `db:"price_at_add"`
}

func (r *CartRepo) Ensure(userID, storeID string) (CartRow, error) {
	var c CartRow
	err := r.db.Get(&c, `SELECT id, user_id, store_id, coupon_code, fulfillment, address_id
	                     FROM carts WHERE user_id = ? AND store_id = ?`, userID, storeID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return CartRow{}, err
	}
	c = CartRow{ID: uuid.NewString(), UserID: userID, StoreID: storeID, Fulfillment: "delivery"}
	_, err = r.db.Exec(`
		INSERT INTO carts(id, user_id, store_id, fulfillment, updated_at) VALUES(?,?,?,?,?)
		ON CONFLICT(user_id, store_id) DO NOTHING`,
		c.ID, userID, storeID, c.Fulfillment, time.Now().Format(time.RFC3339))
	if err != nil {
		return CartRow{}, err
	}
	// a concurrent request may have won the insert
	err = r.db.Get(&c, `SELECT id, user_id, store_id, coupon_code, fulfillment, address_id
	                   FROM carts WHERE user_id = ? AND store_id = ?`, userID, storeID)
	return c, err
}

// AddItem increments the line quantity, capped at maxQty.
func (r *CartRepo) AddItem(cartID, productID string, qty int, price float64, maxQty int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,qty,price_at_add,created_at,updated_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = MIN(cart_items.qty + excluded.qty, ?), updated_at = CURRENT_TIMESTAMP
	`, cartID, productID, qty, price, maxQty)
	if err != nil {
		return err
	}
	return r.touch(cartID)
}

// SetQty sets an absolute quantity; qty <= 0 removes the line.
func (r *CartRepo) SetQty(cartID, productID string, qty int, price float64) error {
	if qty <= 0 {
		return r.RemoveItem(cartID, productID)
	}
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,qty,price_at_add,created_at,updated_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, productID, qty, price)
	if err != nil {
		return err
	}
	return r.touch(cartID)
}

func (r *CartRepo) RemoveItem(cartID, productID string) error {
	if _, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID); err != nil {
		return err
	}
	return r.touch(cartID)
}

func (r *CartRepo) Items(cartID string) ([]CartItemRow, error) {
	out := []CartItemRow{}
	err := r.db.Select(&out, `
	  SELECT ci.product_id, p.name, COALESCE(p.image_url,'') AS image_url, ci.qty, ci.price_at_add
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at, p.name
	`, cartID)
	return out, err
}

func (r *CartRepo) SetCoupon(cartID, code string) error {
	_, err := r.db.Exec(`UPDATE carts SET coupon_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, code, cartID)
	return err
}

func (r *CartRepo) SetFulfillment(cartID, mode, addressID string) error {
	_, err := r.db.Exec(`UPDATE carts SET fulfillment = ?, address_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		mode, addressID, cartID)
	return err
}

// Clear empties the cart and drops any coupon.
func (r *CartRepo) Clear(cartID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE carts SET coupon_code = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CartRepo) touch(cartID string) error {
	_, err := r.db.Exec(`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID)
	return err
}
