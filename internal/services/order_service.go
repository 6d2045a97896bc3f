package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"chmlcart/internal/domain"
	"chmlcart/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Prods: prods}
}

// Place records a new order for the authenticated user. Line prices and
// names are resolved server-side from the catalog, never trusted from the
// client. Stock is decremented later, when an admin marks the order
// delivered.
func (s *OrderService) Place(userID string, o domain.Order) (domain.Order, error) {
	if len(o.Items) == 0 {
		return domain.Order{}, domain.Validation("Order has no items")
	}
	if strings.TrimSpace(o.Address) == "" || strings.TrimSpace(o.City) == "" || strings.TrimSpace(o.Country) == "" {
		return domain.Order{}, domain.Validation("Please enter the shipping address")
	}

	items := make([]domain.OrderItem, 0, len(o.Items))
	itemsTotal := 0.0
	seen := map[string]bool{}
	for _, it := range o.Items {
		if it.Qty < 1 {
			return domain.Order{}, domain.Validation("Item quantity must be at least 1")
		}
		if seen[it.ProductID] {
			return domain.Order{}, domain.Validation("Duplicate order item")
		}
		seen[it.ProductID] = true

		p, err := s.Prods.Get(it.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Order{}, domain.NotFound("Product not found")
			}
			return domain.Order{}, domain.Internal(err)
		}
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       it.Qty,
			Price:     p.Price,
			Image:     image,
		})
		itemsTotal += p.Price * float64(it.Qty)
	}

	o.ID = uuid.NewString()
	o.UserID = userID
	o.Status = domain.OrderProcessing
	o.Items = items
	o.ItemsPrice = itemsTotal
	o.TotalPrice = itemsTotal + o.TaxPrice + o.ShippingPrice

	if err := s.Orders.Create(&o); err != nil {
		return domain.Order{}, domain.Internal(err)
	}
	return s.get(o.ID)
}

// Get returns one order; non-admin callers only see their own.
func (s *OrderService) Get(id string, caller *domain.User) (domain.Order, error) {
	o, err := s.get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != caller.ID && !caller.IsAdmin() {
		return domain.Order{}, domain.Forbidden("You are not allowed to view this order")
	}
	return o, nil
}

func (s *OrderService) ListMine(userID string) ([]domain.Order, error) {
	out, err := s.Orders.ListByUser(userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return out, nil
}

func (s *OrderService) ListAll() ([]domain.Order, float64, error) {
	out, err := s.Orders.ListAll()
	if err != nil {
		return nil, 0, domain.Internal(err)
	}
	total, err := s.Orders.TotalAmount()
	if err != nil {
		return nil, 0, domain.Internal(err)
	}
	return out, total, nil
}

// UpdateStatus advances an order. Marking DELIVERED decrements stock for
// each line item exactly once; a delivered order is final.
func (s *OrderService) UpdateStatus(id, status string) (domain.Order, error) {
	if status != domain.OrderProcessing && status != domain.OrderShipped && status != domain.OrderDelivered {
		return domain.Order{}, domain.Validation("Invalid order status")
	}
	o, err := s.get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status == domain.OrderDelivered {
		return domain.Order{}, domain.Validation("Order has already been delivered")
	}

	if status == domain.OrderDelivered {
		for _, it := range o.Items {
			if err := s.Prods.DecrementStock(it.ProductID, it.Qty); err != nil {
				return domain.Order{}, domain.Internal(err)
			}
		}
	}
	if err := s.Orders.UpdateStatus(id, status); err != nil {
		return domain.Order{}, domain.Internal(err)
	}
	return s.get(id)
}

func (s *OrderService) Delete(id string) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	if err := s.Orders.Delete(id); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func (s *OrderService) get(id string) (domain.Order, error) {
	o, err := s.Orders.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.NotFound("Order not found with this id: " + id)
		}
		return domain.Order{}, domain.Internal(err)
	}
	return o, nil
}
