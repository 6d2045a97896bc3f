package handlers

import (
	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	applog "chmlcart/internal/log"
	"chmlcart/internal/query"
	"chmlcart/internal/services"
	"chmlcart/internal/validate"
)

// AdminHandler groups the elevated-role endpoints: user management, product
// CRUD, and order administration. All routes sit behind RequireAdmin.
type AdminHandler struct {
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	PageSize int
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Seller      string   `json:"seller"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// GET /api/v1/admin/users — the user listing runs through the same query
// pipeline as the product listing.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	spec := query.Parse(queryValues(c))
	users, total, err := h.Auth.ListUsers(spec, h.PageSize)
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"count":      total,
		"resPerPage": h.PageSize,
		"users":      users,
	})
}

// GET /api/v1/admin/user/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.NotFound("User not found with this id: " + c.Params("id"))
	}
	u, err := h.Auth.GetUser(id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"user": u})
}

// PUT /api/v1/admin/user/:id — role is only mutable here.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	u, err := h.Auth.UpdateUser(c.Params("id"), req.Name, req.Email, req.Role)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.user.update", map[string]any{"user_id": u.ID, "role": u.Role})
	return respond(c, fiber.StatusOK, fiber.Map{"user": u})
}

// DELETE /api/v1/admin/user/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Auth.DeleteUser(id); err != nil {
		return err
	}
	applog.Audit(c, "admin.user.delete", map[string]any{"user_id": id})
	return respond(c, fiber.StatusOK, nil)
}

// POST /api/v1/admin/product/new
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	p, err := h.Catalog.CreateProduct(productFromRequest(req))
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID})
	return respond(c, fiber.StatusCreated, fiber.Map{"product": p})
}

// PUT /api/v1/admin/product/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	p, err := h.Catalog.UpdateProduct(c.Params("id"), productFromRequest(req))
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product_id": p.ID})
	return respond(c, fiber.StatusOK, fiber.Map{"product": p})
}

// DELETE /api/v1/admin/product/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteProduct(id); err != nil {
		return err
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return respond(c, fiber.StatusOK, nil)
}

// GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, totalAmount, err := h.Orders.ListAll()
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"totalAmount": totalAmount,
		"orders":      orders,
	})
}

// PUT /api/v1/admin/order/:id
func (h *AdminHandler) UpdateOrder(c *fiber.Ctx) error {
	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	o, err := h.Orders.UpdateStatus(c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.order.update", map[string]any{"order_id": o.ID, "status": o.Status})
	return respond(c, fiber.StatusOK, fiber.Map{"order": o})
}

// DELETE /api/v1/admin/order/:id
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Orders.Delete(id); err != nil {
		return err
	}
	applog.Audit(c, "admin.order.delete", map[string]any{"order_id": id})
	return respond(c, fiber.StatusOK, nil)
}

func productFromRequest(req productRequest) domain.Product {
	return domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Seller:      req.Seller,
		Stock:       req.Stock,
		Images:      req.Images,
	}
}
