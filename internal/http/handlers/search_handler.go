package handlers

import (
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return badRequest(c, "q", "invalid search query")
	}
	items, err := h.Catalog.Search(q, c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, "search.fail", err, map[string]any{"q": q})
	}
	return c.JSON(items)
}
