// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
	BcryptCost        = 12
)

var (
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 characters")
	ErrPasswordCommon   = errors.New("Password is too common, please choose another")
)

var commonPasswords = map[string]struct{}{
	"123456": {}, "1234567": {}, "12345678": {}, "123456789": {}, "111111": {},
	"000000": {}, "123123": {}, "654321": {}, "password": {}, "password1": {},
	"qwerty": {}, "qwerty123": {}, "abc123": {}, "iloveyou": {}, "letmein": {},
	"welcome": {}, "admin": {}, "admin123": {}, "monkey": {}, "dragon": {},
	"eventhub": {}, "tickets": {},
}

// ValidatePassword checks length and rejects well-known passwords. It
// guards password changes; registration only uses CheckRegistration.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	if _, bad := commonPasswords[strings.ToLower(password)]; bad {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when no account matched, so unknown and
// known emails cost the same bcrypt work. It is built on first use.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("eventhub-timing-equalizer"), BcryptCost)
	return h
})

// BurnCompare performs a bcrypt comparison that always fails.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
