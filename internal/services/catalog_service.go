package services

import (
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"chmlcart/internal/domain"
	"chmlcart/internal/query"
	"chmlcart/internal/repos"
	"chmlcart/internal/validate"
)

// CatalogService serves the product listing (search + filter + paginate) and
// the admin CRUD over products.
type CatalogService struct {
	Prods    *repos.ProductRepo
	PageSize int
}

func NewCatalogService(prods *repos.ProductRepo, pageSize int) *CatalogService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &CatalogService{Prods: prods, PageSize: pageSize}
}

// ListProducts parses raw query parameters and returns one page plus the
// total match count and the fixed page size.
func (s *CatalogService) ListProducts(values url.Values) ([]domain.Product, int, int, error) {
	spec := query.Parse(values)
	products, total, err := s.Prods.List(spec, s.PageSize)
	if err != nil {
		return nil, 0, 0, domain.Internal(err)
	}
	return products, total, s.PageSize, nil
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.NotFound("Product not found")
		}
		return domain.Product{}, domain.Internal(err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(p domain.Product) (domain.Product, error) {
	if err := validateProduct(&p); err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	if err := s.Prods.Create(&p); err != nil {
		return domain.Product{}, domain.Internal(err)
	}
	return s.GetProduct(p.ID)
}

func (s *CatalogService) UpdateProduct(id string, p domain.Product) (domain.Product, error) {
	if _, err := s.GetProduct(id); err != nil {
		return domain.Product{}, err
	}
	if err := validateProduct(&p); err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	if err := s.Prods.Update(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.NotFound("Product not found")
		}
		return domain.Product{}, domain.Internal(err)
	}
	return s.GetProduct(id)
}

func (s *CatalogService) DeleteProduct(id string) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}
	if err := s.Prods.Delete(id); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > 100 {
		return domain.Validation("Please enter a product name")
	}
	if p.Price < 0 {
		return domain.Validation("Price cannot be negative")
	}
	if p.Stock < 0 {
		return domain.Validation("Stock cannot be negative")
	}
	if _, ok := validate.Name(p.Category); !ok {
		return domain.Validation("Please enter a product category")
	}
	return nil
}
