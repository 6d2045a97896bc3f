package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"chmlcart/internal/domain"
	"chmlcart/internal/repos"
	"chmlcart/internal/validate"
)

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Prods   *repos.ProductRepo
}

func NewReviewService(reviews *repos.ReviewRepo, prods *repos.ProductRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Prods: prods}
}

// Save creates or replaces the caller's review; the product rating aggregate
// is recomputed atomically with the write.
func (s *ReviewService) Save(user *domain.User, productID string, rating int, comment string) error {
	if !validate.Rating(rating) {
		return domain.Validation("Rating must be between 1 and 5")
	}
	if _, err := s.Prods.Get(productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("Product not found")
		}
		return domain.Internal(err)
	}
	rev := &domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.Reviews.Upsert(rev); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func (s *ReviewService) ListByProduct(productID string) ([]domain.Review, error) {
	if _, err := s.Prods.Get(productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Product not found")
		}
		return nil, domain.Internal(err)
	}
	out, err := s.Reviews.ListByProduct(productID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return out, nil
}

func (s *ReviewService) Delete(id string) error {
	rev, err := s.Reviews.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("Review not found")
		}
		return domain.Internal(err)
	}
	if err := s.Reviews.Delete(rev.ID, rev.ProductID); err != nil {
		return domain.Internal(err)
	}
	return nil
}
