package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
)

// respond writes the standard JSON envelope: success mirrors the status
// class, payload fields ride alongside.
func respond(c *fiber.Ctx, status int, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["success"] = status < 400
	return c.Status(status).JSON(data)
}

// queryValues collects the raw query string into url.Values for the query
// pipeline, preserving repeated keys.
func queryValues(c *fiber.Ctx) url.Values {
	vals := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		vals.Add(string(k), string(v))
	})
	return vals
}

// currentUser returns the user attached by RequireUser.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
