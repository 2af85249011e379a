package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if rid := c.Locals("requestid"); rid != nil {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}
