package services_test

import (
	"errors"
	"testing"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"chmlcart/internal/domain"
	"chmlcart/internal/repos"
	"chmlcart/internal/services"
)

func newOrderService(t *testing.T) (*services.OrderService, *repos.ProductRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"u-1", "u-2"} {
		_, err := db.Exec(`
			INSERT INTO users(id,name,email,password_hash) VALUES(?,?,?,?)
		`, id, "Buyer "+id, id+"@example.test", "x")
		if err != nil {
			t.Fatal(err)
		}
	}
	prods := repos.NewProductRepo(db)
	for _, p := range []domain.Product{
		{ID: "p-1", Name: "Mouse", Description: "demo", Price: 25, Category: "Electronics", Seller: "Shop", Stock: 10},
		{ID: "p-2", Name: "Keyboard", Description: "demo", Price: 75, Category: "Electronics", Seller: "Shop", Stock: 4},
	} {
		p := p
		if err := prods.Create(&p); err != nil {
			t.Fatal(err)
		}
	}
	return services.NewOrderService(repos.NewOrderRepo(db), prods), prods
}

func shippedTo(items ...domain.OrderItem) domain.Order {
	return domain.Order{
		Address:       "1 Main St",
		City:          "College Park",
		PostalCode:    "20740",
		Country:       "US",
		Phone:         "555-0100",
		TaxPrice:      5,
		ShippingPrice: 10,
		Items:         items,
	}
}

func TestPlaceOrderPricesComeFromCatalog(t *testing.T) {
	svc, _ := newOrderService(t)

	// Client-supplied prices and names are lies; the catalog wins.
	o, err := svc.Place("u-1", shippedTo(
		domain.OrderItem{ProductID: "p-1", Name: "free mouse", Price: 0.01, Qty: 2},
		domain.OrderItem{ProductID: "p-2", Qty: 1},
	))
	if err != nil {
		t.Fatal(err)
	}

	if o.Status != domain.OrderProcessing {
		t.Fatalf("status: got %q", o.Status)
	}
	if o.ItemsPrice != 2*25+75 {
		t.Fatalf("items price: got %v", o.ItemsPrice)
	}
	if o.TotalPrice != o.ItemsPrice+5+10 {
		t.Fatalf("total price: got %v", o.TotalPrice)
	}
	for _, it := range o.Items {
		if it.ProductID == "p-1" && (it.Price != 25 || it.Name != "Mouse") {
			t.Fatalf("line not resolved from catalog: %+v", it)
		}
	}
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	svc, _ := newOrderService(t)

	cases := []struct {
		name  string
		order domain.Order
	}{
		{"no items", shippedTo()},
		{"zero qty", shippedTo(domain.OrderItem{ProductID: "p-1", Qty: 0})},
		{"duplicate item", shippedTo(
			domain.OrderItem{ProductID: "p-1", Qty: 1},
			domain.OrderItem{ProductID: "p-1", Qty: 2},
		)},
	}
	for _, tc := range cases {
		_, err := svc.Place("u-1", tc.order)
		var de *domain.Error
		if !errors.As(err, &de) || de.Kind != domain.KindValidation {
			t.Fatalf("%s: got %v", tc.name, err)
		}
	}

	o := shippedTo(domain.OrderItem{ProductID: "p-1", Qty: 1})
	o.Address = ""
	_, err := svc.Place("u-1", o)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("missing address: got %v", err)
	}

	_, err = svc.Place("u-1", shippedTo(domain.OrderItem{ProductID: "p-missing", Qty: 1}))
	if !errors.As(err, &de) || de.Kind != domain.KindNotFound {
		t.Fatalf("unknown product: got %v", err)
	}
}

func TestGetOrderOwnership(t *testing.T) {
	svc, _ := newOrderService(t)
	o, err := svc.Place("u-1", shippedTo(domain.OrderItem{ProductID: "p-1", Qty: 1}))
	if err != nil {
		t.Fatal(err)
	}

	owner := &domain.User{ID: "u-1", Role: domain.RoleUser}
	stranger := &domain.User{ID: "u-2", Role: domain.RoleUser}
	admin := &domain.User{ID: "u-3", Role: domain.RoleAdmin}

	if _, err := svc.Get(o.ID, owner); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := svc.Get(o.ID, admin); err != nil {
		t.Fatalf("admin: %v", err)
	}
	_, err = svc.Get(o.ID, stranger)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindForbidden {
		t.Fatalf("stranger: got %v", err)
	}
}

func TestDeliverDecrementsStockExactlyOnce(t *testing.T) {
	svc, prods := newOrderService(t)
	o, err := svc.Place("u-1", shippedTo(
		domain.OrderItem{ProductID: "p-1", Qty: 3},
		domain.OrderItem{ProductID: "p-2", Qty: 1},
	))
	if err != nil {
		t.Fatal(err)
	}

	// SHIPPED must not touch stock.
	if _, err := svc.UpdateStatus(o.ID, domain.OrderShipped); err != nil {
		t.Fatal(err)
	}
	p1, err := prods.Get("p-1")
	if err != nil {
		t.Fatal(err)
	}
	if p1.Stock != 10 {
		t.Fatalf("stock moved before delivery: %d", p1.Stock)
	}

	got, err := svc.UpdateStatus(o.ID, domain.OrderDelivered)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderDelivered || got.DeliveredAt == "" {
		t.Fatalf("delivery not recorded: %+v", got)
	}

	p1, _ = prods.Get("p-1")
	p2, _ := prods.Get("p-2")
	if p1.Stock != 7 || p2.Stock != 3 {
		t.Fatalf("stock after delivery: p-1=%d p-2=%d", p1.Stock, p2.Stock)
	}

	// A delivered order is final; stock must not move again.
	_, err = svc.UpdateStatus(o.ID, domain.OrderDelivered)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("second delivery: got %v", err)
	}
	p1, _ = prods.Get("p-1")
	if p1.Stock != 7 {
		t.Fatalf("stock decremented twice: %d", p1.Stock)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc, _ := newOrderService(t)
	o, err := svc.Place("u-1", shippedTo(domain.OrderItem{ProductID: "p-1", Qty: 1}))
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.UpdateStatus(o.ID, "TELEPORTED")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("got %v", err)
	}
}

func TestListAllSumsOrderTotals(t *testing.T) {
	svc, _ := newOrderService(t)
	if _, err := svc.Place("u-1", shippedTo(domain.OrderItem{ProductID: "p-1", Qty: 1})); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Place("u-2", shippedTo(domain.OrderItem{ProductID: "p-2", Qty: 2})); err != nil {
		t.Fatal(err)
	}

	orders, total, err := svc.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders: got %d", len(orders))
	}
	// (25+15) + (150+15)
	if total != 205 {
		t.Fatalf("total amount: got %v", total)
	}

	mine, err := svc.ListMine("u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].UserID != "u-1" {
		t.Fatalf("mine: %+v", mine)
	}
}
