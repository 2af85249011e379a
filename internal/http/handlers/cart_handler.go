package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartRequest struct {
	StoreID     string `json:"storeId"`
	ProductID   string `json:"productId"`
	Qty         int    `json:"qty"`
	Code        string `json:"code"`
	Fulfillment string `json:"fulfillment"`
	AddressID   string `json:"addressId"`
}

// storeID reads storeId from the body (if parsed) or the query string.
func storeID(c *fiber.Ctx, in *cartRequest) (string, bool) {
	id := c.Query("storeId")
	if in != nil && in.StoreID != "" {
		id = in.StoreID
	}
	return validate.ID(id)
}

// parse decodes the body; ok=false means a 400 has already been written.
func (h *CartHandler) parse(c *fiber.Ctx) (cartRequest, string, bool) {
	var in cartRequest
	if err := c.BodyParser(&in); err != nil {
		_ = badRequest(c, "body", "invalid request body")
		return in, "", false
	}
	sid, ok := storeID(c, &in)
	if !ok {
		_ = badRequest(c, "storeId", "invalid store id")
		return in, "", false
	}
	return in, sid, true
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid, ok := storeID(c, nil)
	if !ok {
		return badRequest(c, "storeId", "invalid store id")
	}
	cart, err := h.Cart.View(userID(c), sid)
	if err != nil {
		return fail(c, "cart.view.fail", err, map[string]any{"store_id": sid})
	}
	return c.JSON(cart)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	in, sid, ok := h.parse(c)
	if !ok {
		return nil
	}
	pid, ok := validate.ID(in.ProductID)
	if !ok {
		return badRequest(c, "productId", "missing productId")
	}
	qty := in.Qty
	if qty < 1 {
		qty = 1
	}
	cart, err := h.Cart.Add(userID(c), sid, pid, validate.ClampQty(qty))
	if err != nil {
		return fail(c, "cart.add.fail", err, map[string]any{"store_id": sid, "product_id": pid})
	}
	applog.Info(c, "cart.add", map[string]any{"store_id": sid, "product_id": pid, "qty": qty})
	return c.JSON(cart)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	in, sid, ok := h.parse(c)
	if !ok {
		return nil
	}
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "productId", "invalid product id")
	}
	if in.Qty < 0 {
		return badRequest(c, "qty", "qty must be 0 or more")
	}
	cart, err := h.Cart.SetQty(userID(c), sid, pid, in.Qty)
	if err != nil {
		return fail(c, "cart.update.fail", err, map[string]any{"store_id": sid, "product_id": pid})
	}
	return c.JSON(cart)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid, ok := storeID(c, nil)
	if !ok {
		return badRequest(c, "storeId", "invalid store id")
	}
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "productId", "invalid product id")
	}
	cart, err := h.Cart.Remove(userID(c), sid, pid)
	if err != nil {
		return fail(c, "cart.remove.fail", err, map[string]any{"store_id": sid, "product_id": pid})
	}
	return c.JSON(cart)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid, ok := storeID(c, nil)
	if !ok {
		return badRequest(c, "storeId", "invalid store id")
	}
	cart, err := h.Cart.Clear(userID(c), sid)
	if err != nil {
		return fail(c, "cart.clear.fail", err, map[string]any{"store_id": sid})
	}
	applog.Info(c, "cart.clear", map[string]any{"store_id": sid})
	return c.JSON(cart)
}

func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	in, sid, ok := h.parse(c)
	if !ok {
		return nil
	}
	code, ok := validate.CouponCode(in.Code)
	if !ok {
		metrics.CouponAttempt("malformed")
		return badRequest(c, "code", "invalid coupon code")
	}
	cart, err := h.Cart.ApplyCoupon(userID(c), sid, code)
	if err != nil {
		metrics.CouponAttempt("rejected")
		return fail(c, "cart.coupon.fail", err, map[string]any{"store_id": sid, "code": code})
	}
	metrics.CouponAttempt("applied")
	applog.Audit(c, "cart.coupon.apply", map[string]any{"store_id": sid, "code": code})
	return c.JSON(cart)
}

func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	sid, ok := storeID(c, nil)
	if !ok {
		return badRequest(c, "storeId", "invalid store id")
	}
	cart, err := h.Cart.RemoveCoupon(userID(c), sid)
	if err != nil {
		return fail(c, "cart.coupon.remove.fail", err, map[string]any{"store_id": sid})
	}
	return c.JSON(cart)
}

func (h *CartHandler) SetFulfillment(c *fiber.Ctx) error {
	in, sid, ok := h.parse(c)
	if !ok {
		return nil
	}
	mode, ok := validate.Fulfillment(in.Fulfillment)
	if !ok {
		return badRequest(c, "fulfillment", "fulfillment must be delivery or pickup")
	}
	addr := ""
	if mode == domain.FulfillmentDelivery && in.AddressID != "" {
		if addr, ok = validate.ID(in.AddressID); !ok {
			return badRequest(c, "addressId", "invalid address id")
		}
	}
	cart, err := h.Cart.SetFulfillment(userID(c), sid, mode, addr)
	if err != nil {
		return fail(c, "cart.fulfillment.fail", err, map[string]any{"store_id": sid, "mode": mode})
	}
	return c.JSON(cart)
}

func (h *CartHandler) Coupons(c *fiber.Ctx) error {
	sid, ok := storeID(c, nil)
	if !ok {
		return badRequest(c, "storeId", "invalid store id")
	}
	list, err := h.Cart.AvailableCoupons(sid)
	if err != nil {
		return fail(c, "coupons.list.fail", err, nil)
	}
	return c.JSON(list)
}
