package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	"chmlcart/internal/log"
	"chmlcart/internal/services"
	"chmlcart/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type orderRequest struct {
	Items         []orderItemRequest `json:"items"`
	Address       string             `json:"address"`
	City          string             `json:"city"`
	PostalCode    string             `json:"postalCode"`
	Country       string             `json:"country"`
	Phone         string             `json:"phone"`
	TaxPrice      float64            `json:"taxPrice"`
	ShippingPrice float64            `json:"shippingPrice"`
}

// POST /api/v1/order/new
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	o := domain.Order{
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		Phone:         req.Phone,
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
	}
	for _, it := range req.Items {
		pid, ok := validate.ID(it.ProductID)
		if !ok {
			return domain.Validation("Invalid product id")
		}
		o.Items = append(o.Items, domain.OrderItem{ProductID: pid, Qty: it.Qty})
	}
	placed, err := h.Orders.Place(currentUser(c).ID, o)
	if err != nil {
		return err
	}
	log.Audit(c, "order.place", map[string]any{"order_id": placed.ID, "total": placed.TotalPrice})
	return respond(c, fiber.StatusCreated, fiber.Map{"order": placed})
}

// GET /api/v1/order/:id
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.NotFound("Order not found with this id: " + c.Params("id"))
	}
	o, err := h.Orders.Get(id, currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"order": o})
}

// GET /api/v1/myorders
func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	orders, err := h.Orders.ListMine(currentUser(c).ID)
	if err != nil {
		log.Error(c, "orders.mine.fail", err, nil)
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"orders": orders})
}
