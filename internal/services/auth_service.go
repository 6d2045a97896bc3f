package services

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chmlcart/internal/domain"
	"chmlcart/internal/mail"
	"chmlcart/internal/query"
	"chmlcart/internal/repos"
	"chmlcart/internal/token"
	"chmlcart/internal/validate"
)

// AuthService owns the credential lifecycle: registration, login, the
// time-boxed password-reset flow, and the admin user operations. It issues
// stateless bearer tokens; nothing is revoked server-side before expiry.
type AuthService struct {
	Users       *repos.UserRepo
	Tokens      *token.Manager
	Mail        mail.Sender
	Body        mail.BodyRenderer
	FrontendURL string
	ResetTTL    time.Duration
}

func NewAuthService(users *repos.UserRepo, tokens *token.Manager, sender mail.Sender, body mail.BodyRenderer, frontendURL string, resetTTL time.Duration) *AuthService {
	if body == nil {
		body = mail.PlainBody{}
	}
	return &AuthService{
		Users:       users,
		Tokens:      tokens,
		Mail:        sender,
		Body:        body,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		ResetTTL:    resetTTL,
	}
}

func (s *AuthService) Register(name, email, password, avatar string) (*domain.User, string, error) {
	name, ok := validate.Name(name)
	if !ok {
		return nil, "", domain.Validation("Please enter a valid name")
	}
	email, ok = validate.Email(email)
	if !ok {
		return nil, "", domain.Validation("Please enter a valid email")
	}
	if !validate.Password(password) {
		return nil, "", domain.Validation("Password must be between 8 and 64 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", domain.Internal(err)
	}

	u := &domain.User{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Hash:   string(hash),
		Avatar: strings.TrimSpace(avatar),
		Role:   domain.RoleUser,
	}
	if err := s.Users.Create(u); err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "UNIQUE") {
			return nil, "", domain.Validation("Email is already registered")
		}
		return nil, "", domain.Internal(err)
	}
	return s.withToken(u)
}

// Login deliberately collapses unknown-email and wrong-password into one
// indistinguishable failure.
func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", domain.Validation("Please enter email & password")
	}

	u, err := s.Users.ByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.Auth("Invalid email or password")
		}
		return nil, "", domain.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", domain.Auth("Invalid email or password")
	}
	return s.withToken(u)
}

// ForgotPassword stores only the one-way hash of a fresh reset token and
// mails the raw token. A failed send rolls the pair back so no live reset
// credential outlives an unnotified user.
func (s *AuthService) ForgotPassword(email string) error {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("User not found with this email")
		}
		return domain.Internal(err)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return domain.Internal(err)
	}
	resetToken := hex.EncodeToString(raw)
	expires := time.Now().Add(s.ResetTTL).Unix()

	if err := s.Users.SetResetToken(u.ID, hashResetToken(resetToken), expires); err != nil {
		return domain.Internal(err)
	}

	resetURL := s.FrontendURL + "/password/reset/" + resetToken
	body, err := s.Body.ResetBody(u.Name, resetURL)
	if err == nil {
		err = s.Mail.Send(u.Email, "ChmlCart Password Recovery", body)
	}
	if err != nil {
		_ = s.Users.ClearResetToken(u.ID)
		return domain.Delivery("Email could not be sent, please try again", err)
	}
	return nil
}

// ResetPassword consumes a reset token. Expired and merely-wrong tokens are
// indistinguishable to the caller.
func (s *AuthService) ResetPassword(rawToken, password, confirm string) (*domain.User, string, error) {
	u, err := s.Users.ByResetHash(hashResetToken(rawToken), time.Now().Unix())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.Token("Reset Password Token is invalid or has been expired")
		}
		return nil, "", domain.Internal(err)
	}
	if password != confirm {
		return nil, "", domain.Validation("Password does not match")
	}
	if !validate.Password(password) {
		return nil, "", domain.Validation("Password must be between 8 and 64 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", domain.Internal(err)
	}
	if err := s.Users.ConsumeReset(u.ID, string(hash)); err != nil {
		return nil, "", domain.Internal(err)
	}
	u.Hash = string(hash)
	u.ResetHash = ""
	u.ResetExpires = 0
	return s.withToken(u)
}

// ChangePassword replaces the hash for an authenticated user. No new token
// is issued and none are revoked; existing sessions ride out their expiry.
func (s *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return domain.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(oldPassword)) != nil {
		return domain.Auth("Old password is incorrect")
	}
	if !validate.Password(newPassword) {
		return domain.Validation("Password must be between 8 and 64 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.Internal(err)
	}
	if err := s.Users.UpdatePassword(u.ID, string(hash)); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func (s *AuthService) UpdateProfile(userID, name, email, avatar string) (*domain.User, error) {
	name, ok := validate.Name(name)
	if !ok {
		return nil, domain.Validation("Please enter a valid name")
	}
	email, ok = validate.Email(email)
	if !ok {
		return nil, domain.Validation("Please enter a valid email")
	}
	if err := s.Users.UpdateProfile(userID, name, email, strings.TrimSpace(avatar)); err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "UNIQUE") {
			return nil, domain.Validation("Email is already registered")
		}
		return nil, domain.Internal(err)
	}
	u, err := s.Users.ByID(userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return u, nil
}

func (s *AuthService) GetUser(id string) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("User not found with this id: " + id)
		}
		return nil, domain.Internal(err)
	}
	return u, nil
}

// ListUsers runs the admin user listing through the query pipeline.
func (s *AuthService) ListUsers(spec query.Spec, pageSize int) ([]domain.User, int, error) {
	users, total, err := s.Users.List(spec, pageSize)
	if err != nil {
		return nil, 0, domain.Internal(err)
	}
	return users, total, nil
}

func (s *AuthService) UpdateUser(id, name, email, role string) (*domain.User, error) {
	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}
	name, ok := validate.Name(name)
	if !ok {
		return nil, domain.Validation("Please enter a valid name")
	}
	email, ok = validate.Email(email)
	if !ok {
		return nil, domain.Validation("Please enter a valid email")
	}
	role, ok = validate.Role(role)
	if !ok {
		return nil, domain.Validation("Invalid role")
	}
	if err := s.Users.UpdateAdminFields(id, name, email, role); err != nil {
		return nil, domain.Internal(err)
	}
	return s.GetUser(id)
}

func (s *AuthService) DeleteUser(id string) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.Users.Delete(id); err != nil {
		return domain.Internal(err)
	}
	return nil
}

func (s *AuthService) withToken(u *domain.User) (*domain.User, string, error) {
	tok, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, "", domain.Internal(err)
	}
	return u, tok, nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
