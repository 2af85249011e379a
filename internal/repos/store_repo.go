package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type StoreRepo struct{ db *sqlx.DB }

func NewStoreRepo(db *sqlx.DB) *StoreRepo { return &StoreRepo{db: db} }

const storeCols = `id, name, category, COALESCE(description,'') AS description, COALESCE(image_url,'') AS image_url,
    address, pincode, lat, lng, rating, popularity, delivery, pickup, active`

func (r *StoreRepo) Get(id string) (domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, `SELECT `+storeCols+` FROM stores WHERE id = ? AND active = 1`, id)
	return s, err
}

// ListActive returns every active store; distance filtering happens in the service.
func (r *StoreRepo) ListActive() ([]domain.Store, error) {
	var out []domain.Store
	err := r.db.Select(&out, `SELECT `+storeCols+` FROM stores WHERE active = 1 ORDER BY name`)
	return out, err
}

func (r *StoreRepo) Popular(limit int) ([]domain.Store, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []domain.Store
	err := r.db.Select(&out, `
		SELECT `+storeCols+` FROM stores
		WHERE active = 1
		ORDER BY popularity DESC, rating DESC
		LIMIT ?`, limit)
	return out, err
}

func (r *StoreRepo) Search(q string, limit int) ([]domain.Store, error) {
	var out []domain.Store
	like := "%" + q + "%"
	err := r.db.Select(&out, `
		SELECT `+storeCols+` FROM stores
		WHERE active = 1 AND (LOWER(name) LIKE ? OR LOWER(category) LIKE ?)
		ORDER BY popularity DESC
		LIMIT ?`, like, like, limit)
	return out, err
}

// BumpPopularity is called when an order is placed.
func (r *StoreRepo) BumpPopularity(id string) error {
	_, err := r.db.Exec(`UPDATE stores SET popularity = popularity + 1 WHERE id = ?`, id)
	return err
}

func (r *StoreRepo) Report(id, storeID, userID, reason string) error {
	_, err := r.db.Exec(`INSERT INTO reports(id, store_id, user_id, reason) VALUES(?,?,?,?)`, id, storeID, userID, reason)
	return err
}
