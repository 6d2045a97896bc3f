package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	"chmlcart/internal/log"
	"chmlcart/internal/services"
	"chmlcart/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

type reviewRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// PUT /api/v1/review — creates or replaces the caller's review.
func (h *ReviewHandler) Save(c *fiber.Ctx) error {
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return domain.Validation("Invalid product id")
	}
	if err := h.Reviews.Save(currentUser(c), pid, req.Rating, req.Comment); err != nil {
		return err
	}
	log.Audit(c, "review.save", map[string]any{"product_id": pid})
	return respond(c, fiber.StatusOK, nil)
}

// GET /api/v1/reviews?id=<product>
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Query("id"))
	if !ok {
		return domain.Validation("Invalid product id")
	}
	reviews, err := h.Reviews.ListByProduct(pid)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"reviews": reviews})
}

// DELETE /api/v1/review?id=<review> (admin)
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return domain.Validation("Invalid review id")
	}
	if err := h.Reviews.Delete(id); err != nil {
		return err
	}
	log.Audit(c, "review.delete", map[string]any{"review_id": id})
	return respond(c, fiber.StatusOK, nil)
}
