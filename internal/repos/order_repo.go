package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"chmlcart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id,user_id,status,address,city,postal_code,country,phone,items_price,tax_price,shipping_price,total_price,delivered_at,created_at`

// Create inserts the order header and its line items in one transaction.
func (r *OrderRepo) Create(o *domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO orders(id,user_id,status,address,city,postal_code,country,phone,items_price,tax_price,shipping_price,total_price)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
	`, o.ID, o.UserID, o.Status, o.Address, o.City, o.PostalCode, o.Country, o.Phone,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice); err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id,product_id,name,qty,price,image)
			VALUES(?,?,?,?,?,?)
		`, o.ID, it.ProductID, it.Name, it.Qty, it.Price, it.Image); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id=?`, id); err != nil {
		return domain.Order{}, err
	}
	if err := r.db.Select(&o.Items, `
		SELECT order_id,product_id,name,qty,price,COALESCE(image,'') AS image
		FROM order_items WHERE order_id=? ORDER BY name
	`, id); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id=?
		ORDER BY datetime(created_at) DESC, id
	`, userID)
	return out, err
}

func (r *OrderRepo) ListAll() ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		ORDER BY datetime(created_at) DESC, id
	`)
	return out, err
}

// TotalAmount sums every order for the admin dashboard figure.
func (r *OrderRepo) TotalAmount() (float64, error) {
	var total sql.NullFloat64
	if err := r.db.Get(&total, `SELECT SUM(total_price) FROM orders`); err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	var err error
	if status == domain.OrderDelivered {
		_, err = r.db.Exec(`UPDATE orders SET status=?, delivered_at=CURRENT_TIMESTAMP WHERE id=?`, status, id)
	} else {
		_, err = r.db.Exec(`UPDATE orders SET status=? WHERE id=?`, status, id)
	}
	return err
}

func (r *OrderRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM orders WHERE id=?`, id)
	return err
}
