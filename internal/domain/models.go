package domain

type Product struct {
	ID          string   `db:"id" json:"id"`
	Name        string   `db:"name" json:"name"`
	Description string   `db:"description" json:"description"`
	Price       float64  `db:"price" json:"price"`
	Category    string   `db:"category" json:"category"`
	Seller      string   `db:"seller" json:"seller"`
	Stock       int      `db:"stock" json:"stock"`
	ImagesJSON  string   `db:"images_json" json:"-"`
	Images      []string `db:"-" json:"images"`
	Ratings     float64  `db:"ratings" json:"ratings"`
	NumReviews  int      `db:"num_reviews" json:"numOfReviews"`
	CreatedAt   string   `db:"created_at" json:"createdAt"`
	UpdatedAt   string   `db:"updated_at" json:"-"`
}

type Review struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"productId"`
	UserID    string `db:"user_id" json:"userId"`
	UserName  string `db:"user_name" json:"user"`
	Rating    int    `db:"rating" json:"rating"`
	Comment   string `db:"comment" json:"comment"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

const (
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
)

type Order struct {
	ID            string  `db:"id" json:"id"`
	UserID        string  `db:"user_id" json:"userId"`
	Status        string  `db:"status" json:"status"`
	Address       string  `db:"address" json:"address"`
	City          string  `db:"city" json:"city"`
	PostalCode    string  `db:"postal_code" json:"postalCode"`
	Country       string  `db:"country" json:"country"`
	Phone         string  `db:"phone" json:"phone"`
	ItemsPrice    float64 `db:"items_price" json:"itemsPrice"`
	TaxPrice      float64 `db:"tax_price" json:"taxPrice"`
	ShippingPrice float64 `db:"shipping_price" json:"shippingPrice"`
	TotalPrice    float64 `db:"total_price" json:"totalPrice"`
	DeliveredAt   string  `db:"delivered_at" json:"deliveredAt,omitempty"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Qty       int     `db:"qty" json:"qty"`
	Price     float64 `db:"price" json:"price"`
	Image     string  `db:"image" json:"image,omitempty"`
}
