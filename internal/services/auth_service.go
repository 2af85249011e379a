package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpTTL         = 5 * time.Minute
	maxOTPAttempts = 5
)

// Claims is the bearer token payload.
type Claims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
	// DevOTP replaces an SMS provider: every challenge uses this code.
	DevOTP string
	now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration, devOTP string) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl, DevOTP: devOTP, now: time.Now}
}

// RequestOTP stores a hashed one-time code for phone.
func (s *AuthService) RequestOTP(phone string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.DevOTP), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Users.PutOTP(phone, string(hash), s.now().Add(otpTTL))
}

// VerifyOTP checks the code, creates the user on first login and issues a token.
func (s *AuthService) VerifyOTP(phone, code string) (string, *domain.User, error) {
	row, err := s.Users.GetOTP(phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrBadOTP
	}
	if err != nil {
		return "", nil, err
	}
	exp, err := time.Parse(time.RFC3339, row.ExpiresAt)
	if err != nil || s.now().After(exp) {
		_ = s.Users.DeleteOTP(phone)
		return "", nil, ErrOTPExpired
	}
	if row.Attempts >= maxOTPAttempts {
		return "", nil, ErrTooManyAttempts
	}
	if bcrypt.CompareHashAndPassword([]byte(row.CodeHash), []byte(code)) != nil {
		_ = s.Users.BumpOTPAttempts(phone)
		return "", nil, ErrBadOTP
	}
	if err := s.Users.DeleteOTP(phone); err != nil {
		return "", nil, err
	}

	u, err := s.Users.EnsureByPhone(phone)
	if err != nil {
		return "", nil, err
	}
	tok, err := s.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Issue signs an HS256 token for u.
func (s *AuthService) Issue(u *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Phone: u.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies signature and expiry and returns the claims.
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, ErrBadToken
	}
	return claims, nil
}

func (s *AuthService) Me(userID string) (*domain.User, error) {
	u, err := s.Users.ByID(userID)
	return u, notFound(err, "user")
}

func (s *AuthService) UpdateProfile(userID, name, email string) (*domain.User, error) {
	if err := s.Users.UpdateProfile(userID, name, email); err != nil {
		return nil, err
	}
	return s.Me(userID)
}
