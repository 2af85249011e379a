package handlers

import (
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type otpRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var in otpRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return badRequest(c, "phone", "enter a valid 10-digit mobile number")
	}
	if err := h.Auth.RequestOTP(phone); err != nil {
		return fail(c, "auth.otp.fail", err, nil)
	}
	log.Audit(c, "auth.otp.sent", map[string]any{"phone": maskPhone(phone)})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"sent": true})
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var in otpRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return badRequest(c, "phone", "enter a valid 10-digit mobile number")
	}
	code, ok := validate.OTP(in.OTP)
	if !ok {
		return badRequest(c, "otp", "otp must be 6 digits")
	}
	tok, u, err := h.Auth.VerifyOTP(phone, code)
	if err != nil {
		return fail(c, "auth.login.fail", err, map[string]any{"phone": maskPhone(phone)})
	}
	log.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := h.Auth.Me(userID(c))
	if err != nil {
		return fail(c, "auth.me.fail", err, nil)
	}
	return c.JSON(u)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var in profileRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "name must be 1-40 characters")
	}
	email := ""
	if in.Email != "" {
		if email, ok = validate.Email(in.Email); !ok {
			return badRequest(c, "email", "invalid email")
		}
	}
	u, err := h.Auth.UpdateProfile(userID(c), name, email)
	if err != nil {
		return fail(c, "auth.profile.fail", err, nil)
	}
	log.Audit(c, "auth.profile.update", nil)
	return c.JSON(u)
}

func maskPhone(p string) string {
	if len(p) < 4 {
		return "****"
	}
	return "******" + p[len(p)-4:]
}
