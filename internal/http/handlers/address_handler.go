package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AddressHandler struct {
	Addrs *services.AddressService
}

func (h *AddressHandler) List(c *fiber.Ctx) error {
	list, err := h.Addrs.List(userID(c))
	if err != nil {
		return fail(c, "address.list.fail", err, nil)
	}
	return c.JSON(list)
}

func (h *AddressHandler) Create(c *fiber.Ctx) error {
	var in domain.Address
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	a, err := h.Addrs.Create(userID(c), in)
	if err != nil {
		return fail(c, "address.create.fail", err, nil)
	}
	applog.Audit(c, "address.create", map[string]any{"address_id": a.ID})
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *AddressHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid address id")
	}
	var in domain.Address
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	a, err := h.Addrs.Update(userID(c), id, in)
	if err != nil {
		return fail(c, "address.update.fail", err, map[string]any{"address_id": id})
	}
	return c.JSON(a)
}

func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid address id")
	}
	if err := h.Addrs.Delete(userID(c), id); err != nil {
		return fail(c, "address.delete.fail", err, map[string]any{"address_id": id})
	}
	applog.Audit(c, "address.delete", map[string]any{"address_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AddressHandler) SetDefault(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid address id")
	}
	if err := h.Addrs.SetDefault(userID(c), id); err != nil {
		return fail(c, "address.default.fail", err, map[string]any{"address_id": id})
	}
	return h.List(c)
}
