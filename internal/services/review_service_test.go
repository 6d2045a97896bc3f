package services_test

import (
	"errors"
	"testing"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"chmlcart/internal/domain"
	"chmlcart/internal/repos"
	"chmlcart/internal/services"
)

func newReviewService(t *testing.T) (*services.ReviewService, *repos.ProductRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"u-1", "u-2"} {
		_, err := db.Exec(`
			INSERT INTO users(id,name,email,password_hash) VALUES(?,?,?,?)
		`, id, "Reviewer "+id, id+"@example.test", "x")
		if err != nil {
			t.Fatal(err)
		}
	}
	prods := repos.NewProductRepo(db)
	p := domain.Product{ID: "p-1", Name: "Mouse", Price: 25, Category: "Electronics", Stock: 10}
	if err := prods.Create(&p); err != nil {
		t.Fatal(err)
	}
	return services.NewReviewService(repos.NewReviewRepo(db), prods), prods
}

func TestSaveReviewRecomputesAggregate(t *testing.T) {
	svc, prods := newReviewService(t)
	alice := &domain.User{ID: "u-1", Name: "Alice"}
	bob := &domain.User{ID: "u-2", Name: "Bob"}

	if err := svc.Save(alice, "p-1", 5, "great"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(bob, "p-1", 2, "meh"); err != nil {
		t.Fatal(err)
	}

	p, err := prods.Get("p-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.NumReviews != 2 || p.Ratings != 3.5 {
		t.Fatalf("aggregate: reviews=%d ratings=%v", p.NumReviews, p.Ratings)
	}

	// One review per user per product: a second save replaces, not appends.
	if err := svc.Save(alice, "p-1", 1, "changed my mind"); err != nil {
		t.Fatal(err)
	}
	p, _ = prods.Get("p-1")
	if p.NumReviews != 2 || p.Ratings != 1.5 {
		t.Fatalf("after re-review: reviews=%d ratings=%v", p.NumReviews, p.Ratings)
	}

	revs, err := svc.ListByProduct("p-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 2 {
		t.Fatalf("reviews: got %d", len(revs))
	}
}

func TestSaveReviewValidation(t *testing.T) {
	svc, _ := newReviewService(t)
	alice := &domain.User{ID: "u-1", Name: "Alice"}

	err := svc.Save(alice, "p-1", 0, "")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("rating 0: got %v", err)
	}

	err = svc.Save(alice, "p-missing", 4, "")
	if !errors.As(err, &de) || de.Kind != domain.KindNotFound {
		t.Fatalf("unknown product: got %v", err)
	}
}

func TestDeleteReviewRecomputesAggregate(t *testing.T) {
	svc, prods := newReviewService(t)
	alice := &domain.User{ID: "u-1", Name: "Alice"}
	if err := svc.Save(alice, "p-1", 4, "fine"); err != nil {
		t.Fatal(err)
	}

	revs, err := svc.ListByProduct("p-1")
	if err != nil || len(revs) != 1 {
		t.Fatalf("list: %v / %d", err, len(revs))
	}
	if err := svc.Delete(revs[0].ID); err != nil {
		t.Fatal(err)
	}

	p, _ := prods.Get("p-1")
	if p.NumReviews != 0 || p.Ratings != 0 {
		t.Fatalf("aggregate after delete: reviews=%d ratings=%v", p.NumReviews, p.Ratings)
	}

	err = svc.Delete(revs[0].ID)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindNotFound {
		t.Fatalf("double delete: got %v", err)
	}
}
