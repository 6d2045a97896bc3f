package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reRole  = regexp.MustCompile(`^(user|admin)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (product/user/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Role validates allowed role enums.
func Role(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reRole.MatchString(s)
}

// Password enforces a simple length window for credential changes.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 64
}

// Rating bounds a review score.
func Rating(n int) bool { return n >= 1 && n <= 5 }
