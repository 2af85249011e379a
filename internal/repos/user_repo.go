package repos

import (
	"database/sql"
	"errors"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByPhone(phone string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,phone,name,email FROM users WHERE phone=?`, phone)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,phone,name,email FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureByPhone returns the user for phone, creating it on first login.
func (r *UserRepo) EnsureByPhone(phone string) (*domain.User, error) {
	u, err := r.ByPhone(phone)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := r.DB.Exec(`INSERT INTO users(id, phone) VALUES(?, ?) ON CONFLICT(phone) DO NOTHING`,
		uuid.NewString(), phone); err != nil {
		return nil, err
	}
	return r.ByPhone(phone)
}

func (r *UserRepo) UpdateProfile(id, name, email string) error {
	_, err := r.DB.Exec(`UPDATE users SET name=?, email=? WHERE id=?`, name, email, id)
	return err
}

// OTPRow is a pending login challenge.
type OTPRow struct {
	Phone     string `db:"phone"`
	CodeHash  string `db:"code_hash"`
	ExpiresAt string `db:"expires_at"`
	Attempts  int    `db:"attempts"`
}

func (r *UserRepo) PutOTP(phone, codeHash string, expiresAt time.Time) error {
	_, err := r.DB.Exec(`
		INSERT INTO otps(phone, code_hash, expires_at, attempts) VALUES(?,?,?,0)
		ON CONFLICT(phone) DO UPDATE SET code_hash=excluded.code_hash, expires_at=excluded.expires_at, attempts=0`,
		phone, codeHash, expiresAt.UTC().Format(time.RFC3339))
	return err
}

func (r *UserRepo) GetOTP(phone string) (OTPRow, error) {
	var o OTPRow
	err := r.DB.Get(&o, `SELECT phone, code_hash, expires_at, attempts FROM otps WHERE phone=?`, phone)
	return o, err
}

func (r *UserRepo) BumpOTPAttempts(phone string) error {
	_, err := r.DB.Exec(`UPDATE otps SET attempts = attempts + 1 WHERE phone=?`, phone)
	return err
}

func (r *UserRepo) DeleteOTP(phone string) error {
	_, err := r.DB.Exec(`DELETE FROM otps WHERE phone=?`, phone)
	return err
}
