package services_test

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"chmlcart/internal/domain"
	"chmlcart/internal/query"
	"chmlcart/internal/repos"
	"chmlcart/internal/services"
	"chmlcart/internal/token"
)

type fakeSender struct {
	fail  bool
	to    string
	sub   string
	body  string
	sends int
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.sends++
	if f.fail {
		return errors.New("relay unreachable")
	}
	f.to, f.sub, f.body = to, subject, body
	return nil
}

// resetURLToken pulls the raw token back out of the plain-text mail body.
func resetURLToken(t *testing.T, body string) string {
	t.Helper()
	const marker = "/password/reset/"
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("no reset link in body: %q", body)
	}
	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, " \n\r\t"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func newAuthService(t *testing.T, sender *fakeSender, resetTTL time.Duration) (*services.AuthService, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", false)
	if err != nil {
		t.Fatal(err)
	}
	users := repos.NewUserRepo(db)
	tokens := token.NewManager([]byte("test-secret"), time.Hour)
	svc := services.NewAuthService(users, tokens, sender, nil, "http://localhost:3000", resetTTL)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t, &fakeSender{}, 30*time.Minute)

	u, tok, err := svc.Register("Alice", "alice@example.test", "Passw0rd!", "")
	if err != nil {
		t.Fatal(err)
	}
	if tok == "" || u.ID == "" {
		t.Fatal("register must return a token and the persisted user")
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("default role: got %q", u.Role)
	}

	if _, _, err := svc.Register("Alice Two", "alice@example.test", "Passw0rd!", ""); err == nil {
		t.Fatal("duplicate email must fail")
	}

	if _, _, err := svc.Login("alice@example.test", "Passw0rd!"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t, &fakeSender{}, 30*time.Minute)
	if _, _, err := svc.Register("Alice", "alice@example.test", "Passw0rd!", ""); err != nil {
		t.Fatal(err)
	}

	_, _, errWrongPass := svc.Login("alice@example.test", "wrong-password")
	_, _, errNoUser := svc.Login("nobody@example.test", "Passw0rd!")

	var e1, e2 *domain.Error
	if !errors.As(errWrongPass, &e1) || !errors.As(errNoUser, &e2) {
		t.Fatalf("expected domain errors, got %v / %v", errWrongPass, errNoUser)
	}
	if e1.Kind != e2.Kind || e1.Message != e2.Message {
		t.Fatalf("failure modes must be indistinguishable: %+v vs %+v", e1, e2)
	}
	if e1.Kind != domain.KindAuth {
		t.Fatalf("kind: got %v", e1.Kind)
	}
}

func TestLoginMissingFieldsIsValidation(t *testing.T) {
	svc, _ := newAuthService(t, &fakeSender{}, 30*time.Minute)
	_, _, err := svc.Login("", "")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("got %v", err)
	}
}

func TestForgotThenResetPassword(t *testing.T) {
	sender := &fakeSender{}
	svc, users := newAuthService(t, sender, 30*time.Minute)
	if _, _, err := svc.Register("Alice", "alice@example.test", "Passw0rd!", ""); err != nil {
		t.Fatal(err)
	}

	if err := svc.ForgotPassword("alice@example.test"); err != nil {
		t.Fatal(err)
	}
	if sender.to != "alice@example.test" {
		t.Fatalf("mail went to %q", sender.to)
	}
	raw := resetURLToken(t, sender.body)

	// The stored hash must never equal the raw token.
	u, err := users.ByEmail("alice@example.test")
	if err != nil {
		t.Fatal(err)
	}
	if u.ResetHash == "" || u.ResetExpires == 0 {
		t.Fatal("reset pair not persisted")
	}
	if u.ResetHash == raw {
		t.Fatal("raw token persisted instead of its hash")
	}

	if _, _, err := svc.ResetPassword(raw, "N3wPassw0rd!", "different"); err == nil {
		t.Fatal("mismatched confirmation must fail")
	}

	if _, tok, err := svc.ResetPassword(raw, "N3wPassw0rd!", "N3wPassw0rd!"); err != nil || tok == "" {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.Login("alice@example.test", "N3wPassw0rd!"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Single use: the same token must now be dead.
	_, _, err = svc.ResetPassword(raw, "An0therPass!", "An0therPass!")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindToken {
		t.Fatalf("second consumption: got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newAuthService(t, sender, -time.Minute) // already expired at issuance
	if _, _, err := svc.Register("Alice", "alice@example.test", "Passw0rd!", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.ForgotPassword("alice@example.test"); err != nil {
		t.Fatal(err)
	}
	raw := resetURLToken(t, sender.body)

	_, _, err := svc.ResetPassword(raw, "N3wPassw0rd!", "N3wPassw0rd!")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindToken {
		t.Fatalf("expired token: got %v", err)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _ := newAuthService(t, &fakeSender{}, 30*time.Minute)
	err := svc.ForgotPassword("ghost@example.test")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindNotFound {
		t.Fatalf("got %v", err)
	}
}

func TestForgotPasswordRollsBackOnSendFailure(t *testing.T) {
	sender := &fakeSender{fail: true}
	svc, users := newAuthService(t, sender, 30*time.Minute)
	if _, _, err := svc.Register("Alice", "alice@example.test", "Passw0rd!", ""); err != nil {
		t.Fatal(err)
	}

	err := svc.ForgotPassword("alice@example.test")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindDelivery {
		t.Fatalf("got %v", err)
	}
	if sender.sends != 1 {
		t.Fatalf("expected a single attempt, got %d", sender.sends)
	}

	// No live reset credential may survive an unnotified user.
	u, err := users.ByEmail("alice@example.test")
	if err != nil {
		t.Fatal(err)
	}
	if u.ResetHash != "" || u.ResetExpires != 0 {
		t.Fatalf("reset pair not rolled back: %q/%d", u.ResetHash, u.ResetExpires)
	}
}

func TestChangePasswordWrongOldLeavesHashUntouched(t *testing.T) {
	svc, users := newAuthService(t, &fakeSender{}, 30*time.Minute)
	u, _, err := svc.Register("Alice", "alice@example.test", "Passw0rd!", "")
	if err != nil {
		t.Fatal(err)
	}
	before, err := users.ByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}

	errChange := svc.ChangePassword(u.ID, "wrong-old", "N3wPassw0rd!")
	var de *domain.Error
	if !errors.As(errChange, &de) || de.Kind != domain.KindAuth {
		t.Fatalf("got %v", errChange)
	}

	after, err := users.ByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Hash != before.Hash {
		t.Fatal("stored hash changed on failed password change")
	}

	if err := svc.ChangePassword(u.ID, "Passw0rd!", "N3wPassw0rd!"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, _, err := svc.Login("alice@example.test", "N3wPassw0rd!"); err != nil {
		t.Fatalf("login after change: %v", err)
	}
}

func TestListUsersThroughPipeline(t *testing.T) {
	svc, _ := newAuthService(t, &fakeSender{}, 30*time.Minute)
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Register(fmt.Sprintf("User %d", i), fmt.Sprintf("u%d@example.test", i), "Passw0rd!", ""); err != nil {
			t.Fatal(err)
		}
	}

	admin, _, err := svc.Register("Root", "root@example.test", "Passw0rd!", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateUser(admin.ID, "Root", "root@example.test", domain.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	spec := query.Parse(url.Values{"role": {"admin"}})
	got, total, err := svc.ListUsers(spec, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(got) != 1 || got[0].Email != "root@example.test" {
		t.Fatalf("admin filter: total=%d got=%+v", total, got)
	}
}
