package repos

import (
	"fmt"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type AddressRepo struct{ db *sqlx.DB }

func NewAddressRepo(db *sqlx.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `id, user_id, type, house, street, city, state, pincode, lat, lng, is_default`

func (r *AddressRepo) List(userID string) ([]domain.Address, error) {
	out := []domain.Address{}
	err := r.db.Select(&out, `SELECT `+addressCols+` FROM addresses WHERE user_id = ?
	                          ORDER BY is_default DESC, created_at`, userID)
	return out, err
}

func (r *AddressRepo) Get(userID, id string) (domain.Address, error) {
	var a domain.Address
	err := r.db.Get(&a, `SELECT `+addressCols+` FROM addresses WHERE user_id = ? AND id = ?`, userID, id)
	return a, err
}

// Create inserts a; the user's first address becomes the default.
func (r *AddressRepo) Create(a domain.Address) (domain.Address, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return a, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM addresses WHERE user_id = ?`, a.UserID); err != nil {
		return a, err
	}
	if n == 0 {
		a.IsDefault = true
	}
	if a.IsDefault {
		if _, err := tx.Exec(`UPDATE addresses SET is_default = 0 WHERE user_id = ?`, a.UserID); err != nil {
			return a, err
		}
	}
	_, err = tx.NamedExec(`
		INSERT INTO addresses(id, user_id, type, house, street, city, state, pincode, lat, lng, is_default)
		VALUES(:id, :user_id, :type, :house, :street, :city, :state, :pincode, :lat, :lng, :is_default)`, a)
	if err != nil {
		return a, err
	}
	return a, tx.Commit()
}

func (r *AddressRepo) Update(a domain.Address) error {
	res, err := r.db.NamedExec(`
		UPDATE addresses SET type=:type, house=:house, street=:street, city=:city, state=:state,
		  pincode=:pincode, lat=:lat, lng=:lng
		WHERE id = :id AND user_id = :user_id`, a)
	if err != nil {
		return err
	}
	return oneRow(res, "address "+a.ID)
}

// SetDefault makes id the only default address of the user.
func (r *AddressRepo) SetDefault(userID, id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`UPDATE addresses SET is_default = 0 WHERE user_id = ?`, userID); err != nil {
		return err
	}
	res, err := tx.Exec(`UPDATE addresses SET is_default = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	if err := oneRow(res, "address "+id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes id; if it was the default, the oldest remaining address takes over.
func (r *AddressRepo) Delete(userID, id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var wasDefault bool
	if err := tx.Get(&wasDefault, `SELECT is_default FROM addresses WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM addresses WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return err
	}
	if wasDefault {
		if _, err := tx.Exec(`
			UPDATE addresses SET is_default = 1
			WHERE id = (SELECT id FROM addresses WHERE user_id = ? ORDER BY created_at LIMIT 1)`, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type rowsAffected interface{ RowsAffected() (int64, error) }

var ErrNoRowsAffected = fmt.Errorf("no rows affected")

func oneRow(res rowsAffected, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNoRowsAffected)
	}
	return nil
}
