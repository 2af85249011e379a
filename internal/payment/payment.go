// Package payment wraps the checkout gateway: the client invokes Checkout,
// the server verifies the returned signature before marking an order paid.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

type Request struct {
	Amount   float64
	Currency string
	OrderID  string // gateway order id issued by the backend
	Phone    string
}

type Result struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
}

// Error is a gateway-reported failure; the shell routes it to the failure screen.
type Error struct {
	Code   string
	Reason string
}

func (e *Error) Error() string { return fmt.Sprintf("payment failed: %s (%s)", e.Reason, e.Code) }

const (
	CodeCancelled      = "PAYMENT_CANCELLED"
	CodeBadRequest     = "BAD_REQUEST_ERROR"
	CodeNetwork        = "NETWORK_ERROR"
	CodeVerifyMismatch = "SIGNATURE_MISMATCH"
)

// IsCancelled reports whether err is a user-cancelled checkout.
func IsCancelled(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == CodeCancelled
}

type Gateway interface {
	Checkout(ctx context.Context, req Request) (Result, error)
}

// Sign computes hex(HMAC-SHA256(secret, orderID|paymentID)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(secret string, r Result) bool {
	want := Sign(secret, r.OrderID, r.PaymentID)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(r.Signature)))
}

// NewOrderID issues a gateway order id for a backend order.
func NewOrderID() string { return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14] }

// MinorUnits converts an amount to paise/cents as gateways expect.
func MinorUnits(amount float64) int64 { return int64(math.Round(amount * 100)) }

// Sandbox is a test-mode gateway that approves every well-formed request and
// signs results with the shared sandbox secret. Decline forces a failure.
type Sandbox struct {
	Secret  string
	Decline func(Request) *Error
}

func (s *Sandbox) Checkout(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &Error{Code: CodeNetwork, Reason: err.Error()}
	}
	if req.OrderID == "" || MinorUnits(req.Amount) <= 0 || req.Currency == "" {
		return Result{}, &Error{Code: CodeBadRequest, Reason: "amount, currency and order id are required"}
	}
	if s.Decline != nil {
		if perr := s.Decline(req); perr != nil {
			return Result{}, perr
		}
	}
	pid := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	return Result{PaymentID: pid, OrderID: req.OrderID, Signature: Sign(s.Secret, req.OrderID, pid)}, nil
}
