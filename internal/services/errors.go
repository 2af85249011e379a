package services

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrBadOTP              = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired")
	ErrTooManyAttempts     = errors.New("too many otp attempts")
	ErrBadToken            = errors.New("invalid or expired token")
	ErrInvalidCoupon       = errors.New("invalid coupon code")
	ErrCouponNotApplicable = errors.New("coupon not applicable to this cart")
	ErrCartEmpty           = errors.New("cart empty")
	ErrFulfillment         = errors.New("fulfillment not supported by store")
	ErrAddressRequired     = errors.New("delivery requires an address")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrOrderState          = errors.New("order not awaiting payment")
)

// notFound maps sql.ErrNoRows to ErrNotFound so handlers only branch on
// service sentinels.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
