package repos

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"chmlcart/internal/domain"
	"chmlcart/internal/query"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id,name,description,price,category,seller,stock,images_json,ratings,num_reviews,created_at,COALESCE(updated_at,'') AS updated_at`

// Filterable columns for listing endpoints. Constraints on anything else
// match no rows.
var productFilterCols = map[string]bool{
	"name":        true,
	"price":       true,
	"category":    true,
	"seller":      true,
	"stock":       true,
	"ratings":     true,
	"num_reviews": true,
}

func decodeImages(p *domain.Product) {
	p.Images = []string{}
	if p.ImagesJSON != "" {
		_ = json.Unmarshal([]byte(p.ImagesJSON), &p.Images)
	}
}

// List applies the query pipeline: keyword search on name, structured
// filters, then pagination. The total counts all matches, not just the page.
func (r *ProductRepo) List(spec query.Spec, pageSize int) ([]domain.Product, int, error) {
	where, args := spec.Where("name", productFilterCols)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	var out []domain.Product
	err := r.db.Select(&out, `
		SELECT `+productCols+` FROM products
		WHERE `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, append(args, pageSize, spec.Offset(pageSize))...)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		decodeImages(&out[i])
	}
	return out, total, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id=?`, id)
	if err != nil {
		return domain.Product{}, err
	}
	decodeImages(&p)
	return p, nil
}

func (r *ProductRepo) Create(p *domain.Product) error {
	imgs, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	p.ImagesJSON = string(imgs)
	_, err = r.db.Exec(`
		INSERT INTO products(id,name,description,price,category,seller,stock,images_json)
		VALUES(?,?,?,?,?,?,?,?)
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.Seller, p.Stock, p.ImagesJSON)
	return err
}

func (r *ProductRepo) Update(p *domain.Product) error {
	imgs, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(`
		UPDATE products
		SET name=?, description=?, price=?, category=?, seller=?, stock=?, images_json=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=?
	`, p.Name, p.Description, p.Price, p.Category, p.Seller, p.Stock, string(imgs), p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE id=?`, id)
	return err
}

// DecrementStock reduces stock, flooring at zero like the original's
// delivered-order bookkeeping.
func (r *ProductRepo) DecrementStock(id string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE products SET stock = MAX(stock - ?, 0), updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, qty, id)
	return err
}
