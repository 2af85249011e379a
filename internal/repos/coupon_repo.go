package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CouponRepo struct{ db *sqlx.DB }

func NewCouponRepo(db *sqlx.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponCols = `code, description, kind, value, max_discount, min_subtotal, rule, store_id, active`

func (r *CouponRepo) Get(code string) (domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.Get(&c, `SELECT `+couponCols+` FROM coupons WHERE code = ? AND active = 1`, code)
	return c, err
}

// ForStore lists global coupons plus the ones scoped to storeID.
func (r *CouponRepo) ForStore(storeID string) ([]domain.Coupon, error) {
	out := []domain.Coupon{}
	err := r.db.Select(&out, `
		SELECT `+couponCols+` FROM coupons
		WHERE active = 1 AND (store_id = '' OR store_id = ?)
		ORDER BY code`, storeID)
	return out, err
}
