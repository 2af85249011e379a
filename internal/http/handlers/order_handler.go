package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/payment"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Order *services.OrderService
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in struct {
		StoreID string `json:"storeId"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	sid, ok := validate.ID(in.StoreID)
	if !ok {
		return badRequest(c, "storeId", "invalid store id")
	}
	o, err := h.Order.Place(userID(c), sid)
	if err != nil {
		return fail(c, "order.place.fail", err, map[string]any{"store_id": sid})
	}
	metrics.OrderTransition(o.Status)
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID, "store_id": sid, "total": o.Summary.Total, "payment_order_id": o.PaymentOrderID,
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// Confirm verifies the gateway result the client received from checkout.
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	var res payment.Result
	if err := c.BodyParser(&res); err != nil || res.PaymentID == "" || res.Signature == "" {
		return badRequest(c, "body", "paymentId, orderId and signature are required")
	}
	o, err := h.Order.ConfirmPayment(userID(c), oid, res)
	if err != nil {
		if o.ID != "" {
			metrics.OrderTransition("PAYMENT_FAILED")
		}
		return fail(c, "order.payment.fail", err, map[string]any{"order_id": oid, "payment_id": res.PaymentID})
	}
	metrics.OrderTransition(o.Status)
	applog.Audit(c, "order.payment.verified", map[string]any{"order_id": oid, "payment_id": res.PaymentID})
	return c.JSON(o)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	o, err := h.Order.Get(userID(c), oid)
	if err != nil {
		if _, public := statusFor(err); public {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		}
		return fail(c, "order.get.fail", err, map[string]any{"order_id": oid})
	}
	return c.JSON(o)
}

// History lists the caller's orders, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.History(userID(c), c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, "orders.history.fail", err, nil)
	}
	return c.JSON(orders)
}

// Receipt renders a printable HTML receipt.
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	o, err := h.Order.Get(userID(c), oid)
	if err != nil {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	return render(c, "receipt", fiber.Map{"Order": o})
}
