package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	"chmlcart/internal/log"
	"chmlcart/internal/services"
	"chmlcart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products — keyword search, field filters and pagination are
// all expressed in the query string and parsed by the query pipeline.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, total, pageSize, err := h.Catalog.ListProducts(queryValues(c))
	if err != nil {
		log.Error(c, "products.list.fail", err, nil)
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"count":      total,
		"resPerPage": pageSize,
		"products":   products,
	})
}

// GET /api/v1/product/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.NotFound("Product not found")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"product": p})
}
