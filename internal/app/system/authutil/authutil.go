// Package authutil holds the credential rules shared by user and admin
// registration, login and profile updates.
package authutil

import (
	"errors"
	"net/mail"
	"strings"
)

// Registration errors. The messages are returned to clients as-is.
var (
	ErrRegistrationFields = errors.New("Name, email and password required")
	ErrInvalidEmail       = errors.New("Please enter a valid email address")
)

// Registration is the raw input of a sign-up request.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// CheckRegistration validates the fields of a sign-up request. Name and
// email are expected to be trimmed already. Sign-up imposes no strength
// rules on the password, only bcrypt's 72-byte ceiling.
func CheckRegistration(in Registration) error {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return ErrRegistrationFields
	}
	if !ValidEmail(in.Email) {
		return ErrInvalidEmail
	}
	if len(in.Password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidEmail reports whether s is a bare address with a dotted domain.
// Display-name forms like "Ann <ann@x.io>" are rejected.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	_, domain, ok := strings.Cut(s, "@")
	if !ok {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
