package handlers

import (
	"errors"
	"strings"

	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service sentinels to HTTP statuses; ok=false means the error
// is internal and must not be shown.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, services.ErrBadOTP), errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrBadToken):
		return fiber.StatusUnauthorized, true
	case errors.Is(err, services.ErrTooManyAttempts):
		return fiber.StatusTooManyRequests, true
	case errors.Is(err, services.ErrInvalidCoupon), errors.Is(err, services.ErrCouponNotApplicable),
		errors.Is(err, services.ErrCartEmpty), errors.Is(err, services.ErrFulfillment),
		errors.Is(err, services.ErrAddressRequired), errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrInvalidReview):
		return fiber.StatusBadRequest, true
	case errors.Is(err, services.ErrOutOfStock), errors.Is(err, services.ErrOrderState):
		return fiber.StatusConflict, true
	case errors.Is(err, services.ErrPaymentVerification):
		return fiber.StatusPaymentRequired, true
	}
	return fiber.StatusInternalServerError, false
}

// fail writes {"error": ...}. Business errors are logged as security events
// with their message; anything else is logged in full and hidden.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	status, public := statusFor(err)
	if !public {
		applog.Error(c, action, err, fields)
		return c.Status(status).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["error"] = err.Error()
	applog.Security(c, action, fields)
	return c.Status(status).JSON(fiber.Map{"error": publicMessage(err)})
}

func publicMessage(err error) string {
	for _, s := range []error{
		services.ErrNotFound, services.ErrBadOTP, services.ErrOTPExpired, services.ErrBadToken,
		services.ErrTooManyAttempts, services.ErrInvalidCoupon, services.ErrCouponNotApplicable,
		services.ErrCartEmpty, services.ErrFulfillment, services.ErrAddressRequired, services.ErrInvalidAddress,
		services.ErrInvalidReview, services.ErrOutOfStock, services.ErrOrderState, services.ErrPaymentVerification,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback: it logs the failure and answers
// without leaking internals, as JSON under /api/ and as a page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"status": code})

	msg := "Something went wrong. Please try again."
	if fe != nil && code < fiber.StatusInternalServerError {
		msg = fe.Message
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
