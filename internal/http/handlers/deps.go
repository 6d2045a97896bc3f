package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"chmlcart/internal/config"
	"chmlcart/internal/mail"
	"chmlcart/internal/repos"
	"chmlcart/internal/services"
	"chmlcart/internal/token"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	ReviewHandler  *ReviewHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler

	Users  *repos.UserRepo
	Tokens *token.Manager
}

func NewDeps(db *sqlx.DB, cfg config.Config, sender mail.Sender, body mail.BodyRenderer) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	tokens := token.NewManager([]byte(cfg.JWT.Secret), cfg.JWT.TTL)

	authSvc := services.NewAuthService(userRepo, tokens, sender, body, cfg.FrontendURL, cfg.Reset.TTL)
	catalogSvc := services.NewCatalogService(prodRepo, cfg.PageSize)
	reviewSvc := services.NewReviewService(reviewRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: authSvc, CookieTTL: cfg.JWT.CookieTTL},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		ReviewHandler:  &ReviewHandler{Reviews: reviewSvc},
		OrderHandler:   &OrderHandler{Orders: orderSvc},
		AdminHandler:   &AdminHandler{Auth: authSvc, Catalog: catalogSvc, Orders: orderSvc, PageSize: cfg.PageSize},

		Users:  userRepo,
		Tokens: tokens,
	}
}

// Register mounts the full /api/v1 surface on the app.
func (d *Deps) Register(app *fiber.App) {
	user := RequireUser(d.Users, d.Tokens)
	admin := RequireAdmin()

	api := app.Group("/api/v1")

	// Auth
	api.Post("/register", d.AuthHandler.Register)
	api.Post("/login", d.AuthHandler.Login)
	api.Get("/logout", d.AuthHandler.Logout)
	api.Post("/password/forgot", d.AuthHandler.ForgotPassword)
	api.Post("/password/reset/:token", d.AuthHandler.ResetPassword)
	api.Get("/myprofile", user, d.AuthHandler.Profile)
	api.Put("/password/change", user, d.AuthHandler.ChangePassword)
	api.Put("/myprofile/update", user, d.AuthHandler.UpdateProfile)

	// Catalog
	api.Get("/products", d.ProductHandler.List)
	api.Get("/product/:id", d.ProductHandler.Detail)

	// Reviews
	api.Put("/review", user, d.ReviewHandler.Save)
	api.Get("/reviews", d.ReviewHandler.List)
	api.Delete("/review", user, admin, d.ReviewHandler.Delete)

	// Orders
	api.Post("/order/new", user, d.OrderHandler.Create)
	api.Get("/myorders", user, d.OrderHandler.Mine)
	api.Get("/order/:id", user, d.OrderHandler.Detail)

	// Admin
	adm := api.Group("/admin", user, admin)
	adm.Get("/users", d.AdminHandler.ListUsers)
	adm.Get("/user/:id", d.AdminHandler.GetUser)
	adm.Put("/user/:id", d.AdminHandler.UpdateUser)
	adm.Delete("/user/:id", d.AdminHandler.DeleteUser)
	adm.Post("/product/new", d.AdminHandler.CreateProduct)
	adm.Put("/product/:id", d.AdminHandler.UpdateProduct)
	adm.Delete("/product/:id", d.AdminHandler.DeleteProduct)
	adm.Get("/orders", d.AdminHandler.ListOrders)
	adm.Put("/order/:id", d.AdminHandler.UpdateOrder)
	adm.Delete("/order/:id", d.AdminHandler.DeleteOrder)
}
