package handlers

import "github.com/gofiber/fiber/v2"

// success writes the standard success envelope with a payload.
func success(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"payload": payload,
	})
}

// successMessage writes the success envelope variant carrying a message
// instead of a payload.
func successMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":   "success",
		"response": message,
	})
}
