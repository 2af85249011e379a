package handlers

import (
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// Check returns the availability of a product, optionally at a given store.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	storeID := c.Query("storeId")
	if storeID != "" {
		if storeID, ok = validate.ID(storeID); !ok {
			return badRequest(c, "storeId", "invalid store id")
		}
	}
	a, err := h.Inv.CheckAvailability(pid, storeID)
	if err != nil {
		return fail(c, "availability.fail", err, map[string]any{"product_id": pid})
	}
	return c.JSON(a)
}
