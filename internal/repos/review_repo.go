package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) ListByStore(storeID string, limit int) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.db.Select(&out, `
		SELECT rv.id, rv.store_id, rv.user_id, COALESCE(NULLIF(u.name,''),'Customer') AS user_name,
		       rv.rating, rv.comment, rv.created_at
		FROM reviews rv LEFT JOIN users u ON u.id = rv.user_id
		WHERE rv.store_id = ?
		ORDER BY rv.created_at DESC
		LIMIT ?`, storeID, limit)
	return out, err
}

// Add inserts the review and refreshes the store's average rating.
func (r *ReviewRepo) Add(rv domain.Review) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`INSERT INTO reviews(id, store_id, user_id, rating, comment) VALUES(?,?,?,?,?)`,
		rv.ID, rv.StoreID, rv.UserID, rv.Rating, rv.Comment); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE stores SET rating = (SELECT ROUND(AVG(rating), 1) FROM reviews WHERE store_id = ?)
		WHERE id = ?`, rv.StoreID, rv.StoreID); err != nil {
		return err
	}
	return tx.Commit()
}
