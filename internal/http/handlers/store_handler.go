package handlers

import (
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

func (h *StoreHandler) Nearby(c *fiber.Ctx) error {
	lat, lng := c.QueryFloat("lat"), c.QueryFloat("lng")
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || (lat == 0 && lng == 0) {
		return badRequest(c, "lat,lng", "lat and lng are required")
	}
	stores, err := h.Catalog.Nearby(lat, lng, c.QueryFloat("radiusKm"))
	if err != nil {
		return fail(c, "stores.nearby.fail", err, nil)
	}
	return c.JSON(stores)
}

func (h *StoreHandler) Popular(c *fiber.Ctx) error {
	stores, err := h.Catalog.Popular(c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, "stores.popular.fail", err, nil)
	}
	return c.JSON(stores)
}

func (h *StoreHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid store id")
	}
	st, err := h.Catalog.Store(id)
	if err != nil {
		return fail(c, "stores.get.fail", err, map[string]any{"store_id": id})
	}
	return c.JSON(st)
}

func (h *StoreHandler) Products(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid store id")
	}
	prods, err := h.Catalog.Products(id, c.QueryInt("page", 1), c.QueryInt("pageSize", 24))
	if err != nil {
		return fail(c, "stores.products.fail", err, map[string]any{"store_id": id})
	}
	return c.JSON(prods)
}

func (h *StoreHandler) ListReviews(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid store id")
	}
	list, err := h.Reviews.List(id, c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, "reviews.list.fail", err, map[string]any{"store_id": id})
	}
	return c.JSON(list)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *StoreHandler) AddReview(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid store id")
	}
	var in reviewRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	rv, err := h.Reviews.Add(userID(c), id, in.Rating, in.Comment)
	if err != nil {
		return fail(c, "reviews.add.fail", err, map[string]any{"store_id": id})
	}
	log.Audit(c, "reviews.add", map[string]any{"store_id": id, "rating": in.Rating})
	return c.Status(fiber.StatusCreated).JSON(rv)
}

func (h *StoreHandler) Report(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid store id")
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	if err := h.Reviews.Report(userID(c), id, in.Reason); err != nil {
		return fail(c, "stores.report.fail", err, map[string]any{"store_id": id})
	}
	log.Audit(c, "stores.report", map[string]any{"store_id": id})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"reported": true})
}
