package repos

import (
	"github.com/jmoiron/sqlx"

	"chmlcart/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Upsert creates or replaces the caller's review of a product, then
// recomputes the product's rating aggregate in the same transaction.
func (r *ReviewRepo) Upsert(rev *domain.Review) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO reviews(id,product_id,user_id,user_name,rating,comment)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(product_id,user_id) DO UPDATE
		SET rating=excluded.rating, comment=excluded.comment, user_name=excluded.user_name
	`, rev.ID, rev.ProductID, rev.UserID, rev.UserName, rev.Rating, rev.Comment); err != nil {
		return err
	}
	if err := recomputeRatings(tx, rev.ProductID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ReviewRepo) ListByProduct(productID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.Select(&out, `
		SELECT id,product_id,user_id,user_name,rating,comment,created_at
		FROM reviews WHERE product_id=?
		ORDER BY created_at DESC, id
	`, productID)
	return out, err
}

func (r *ReviewRepo) Get(id string) (domain.Review, error) {
	var rev domain.Review
	err := r.db.Get(&rev, `
		SELECT id,product_id,user_id,user_name,rating,comment,created_at
		FROM reviews WHERE id=?
	`, id)
	return rev, err
}

// Delete removes a review and recomputes the product aggregate.
func (r *ReviewRepo) Delete(id, productID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM reviews WHERE id=?`, id); err != nil {
		return err
	}
	if err := recomputeRatings(tx, productID); err != nil {
		return err
	}
	return tx.Commit()
}

func recomputeRatings(tx *sqlx.Tx, productID string) error {
	_, err := tx.Exec(`
		UPDATE products SET
		  ratings     = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id=?), 0),
		  num_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id=?),
		  updated_at  = CURRENT_TIMESTAMP
		WHERE id=?
	`, productID, productID, productID)
	return err
}
