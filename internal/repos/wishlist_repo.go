package repos

import (
	"github.com/jmoiron/sqlx"
)

type WishlistRepo struct{ db *sqlx.DB }

func NewWishlistRepo(db *sqlx.DB) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) Add(userID, productID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO wishlist_items(user_id, product_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(user_id, product_id) DO NOTHING
	`, userID, productID)
	return err
}

func (r *WishlistRepo) Remove(userID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM wishlist_items WHERE user_id=? AND product_id=?`, userID, productID)
	return err
}

type WishlistRow struct {
	ProductID string  `db:"product_id" json:"productId"`
	StoreID   string  `db:"store_id" json:"storeId"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	ImageURL  string  `db:"image_url" json:"imageUrl,omitempty"`
	Active    bool    `db:"active" json:"active"`
}

func (r *WishlistRepo) List(userID string) ([]WishlistRow, error) {
	out := []WishlistRow{}
	err := r.db.Select(&out, `
	  SELECT p.id AS product_id, p.store_id, p.name, p.price, COALESCE(p.image_url,'') AS image_url, p.active
	  FROM wishlist_items wi
	  JOIN products p ON p.id = wi.product_id
	  WHERE wi.user_id = ?
	  ORDER BY wi.created_at DESC, p.name
	`, userID)
	return out, err
}
