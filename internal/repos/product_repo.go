package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `p.id, p.store_id, p.category, p.name, COALESCE(p.description,'') AS description, p.price,
    COALESCE(p.image_url,'') AS image_url, p.rating, p.stock, p.active`

func (r *ProductRepo) ListByStore(storeID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products p
	  WHERE p.store_id = ? AND p.active = 1
	  ORDER BY p.category, p.name
	  LIMIT ? OFFSET ?
	`, storeID, limit, offset)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products p WHERE p.id = ?`, id)
	return p, err
}

// ProductHit is a product search row joined with its store name.
type ProductHit struct {
	domain.Product
	StoreName string `db:"store_name"`
}

func (r *ProductRepo) Search(q string, limit int) ([]ProductHit, error) {
	like := "%" + q + "%"
	var out []ProductHit
	err := r.db.Select(&out, `
	  SELECT `+productCols+`, s.name AS store_name
	  FROM products p JOIN stores s ON s.id = p.store_id
	  WHERE p.active = 1 AND s.active = 1
	    AND (LOWER(p.name) LIKE ? OR LOWER(p.category) LIKE ?)
	  ORDER BY p.rating DESC, p.name
	  LIMIT ?`, like, like, limit)
	return out, err
}

// Decrement atomically subtracts "by" units if enough stock exists.
func (r *ProductRepo) Decrement(tx *sqlx.Tx, productID string, by int) (bool, error) {
	res, err := tx.Exec(`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`, by, productID, by)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Restock returns units to stock, e.g. after a failed payment.
func (r *ProductRepo) Restock(productID string, by int) error {
	_, err := r.db.Exec(`UPDATE products SET stock = stock + ? WHERE id = ?`, by, productID)
	return err
}
