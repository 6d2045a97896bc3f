package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	"chmlcart/internal/log"
	"chmlcart/internal/services"
)

type AuthHandler struct {
	Auth      *services.AuthService
	CookieTTL time.Duration
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	OldPassword     string `json:"oldPassword"`
}

type profileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// sendToken sets the http-only bearer cookie and returns it with the
// non-secret profile fields.
func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, u *domain.User, tok string) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // set true behind HTTPS
		Expires:  time.Now().Add(h.CookieTTL),
	})
	return respond(c, status, fiber.Map{"token": tok, "user": u})
}

// POST /api/v1/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	u, tok, err := h.Auth.Register(req.Name, req.Email, req.Password, req.Avatar)
	if err != nil {
		return err
	}
	log.Audit(c, "auth.register", map[string]any{"email": u.Email})
	return h.sendToken(c, fiber.StatusCreated, u, tok)
}

// POST /api/v1/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	u, tok, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return err
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return h.sendToken(c, fiber.StatusOK, u, tok)
}

// GET /api/v1/logout — clears the client-held credential only; issued
// tokens remain valid until natural expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

// POST /api/v1/password/forgot
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	if err := h.Auth.ForgotPassword(req.Email); err != nil {
		return err
	}
	log.Audit(c, "auth.password.forgot", map[string]any{"email": req.Email})
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Email sent to " + req.Email + " successfully"})
}

// POST /api/v1/password/reset/:token
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	u, tok, err := h.Auth.ResetPassword(c.Params("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	log.Audit(c, "auth.password.reset", map[string]any{"email": u.Email})
	return h.sendToken(c, fiber.StatusCreated, u, tok)
}

// GET /api/v1/myprofile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{"user": currentUser(c)})
}

// PUT /api/v1/password/change
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	if err := h.Auth.ChangePassword(currentUser(c).ID, req.OldPassword, req.Password); err != nil {
		return err
	}
	log.Audit(c, "auth.password.change", nil)
	return respond(c, fiber.StatusOK, nil)
}

// PUT /api/v1/myprofile/update
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Validation("Invalid request body")
	}
	u, err := h.Auth.UpdateProfile(currentUser(c).ID, req.Name, req.Email, req.Avatar)
	if err != nil {
		return err
	}
	log.Audit(c, "auth.profile.update", nil)
	return respond(c, fiber.StatusOK, fiber.Map{"user": u})
}
