package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.Wish.List(userID(c))
	if err != nil {
		return fail(c, "wishlist.list.fail", err, nil)
	}
	return c.JSON(items)
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "productId", "missing productId")
	}
	if err := h.Wish.Save(userID(c), pid); err != nil {
		return fail(c, "wishlist.save.fail", err, map[string]any{"product": pid})
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product": pid})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "productId", "missing productId")
	}
	if err := h.Wish.Unsave(userID(c), pid); err != nil {
		return fail(c, "wishlist.unsave.fail", err, map[string]any{"product": pid})
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": pid})
	return c.SendStatus(fiber.StatusNoContent)
}
