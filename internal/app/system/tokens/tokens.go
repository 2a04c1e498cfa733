// Package tokens issues the two credentials a login hands out: a signed
// identity token (HS256 JWT) and an opaque device-binding token.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Realms separate user and admin credentials. A token issued for one realm
// never verifies in the other.
const (
	RealmUser  = "user"
	RealmAdmin = "admin"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid identity token")

// Claims is the payload of an identity token. Subject holds the account id.
type Claims struct {
	Realm string `json:"realm"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies identity tokens with a shared secret.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. ttl applies to every token it signs.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token asserting subject within realm.
func (i *Issuer) Issue(realm, subject string) (string, error) {
	now := i.now()
	claims := Claims{
		Realm: realm,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer and realm. Every failure is
// reported as ErrInvalidToken wrapping the cause.
func (i *Issuer) Verify(realm, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Realm != realm {
		return nil, fmt.Errorf("%w: realm %q", ErrInvalidToken, claims.Realm)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// NewDeviceToken returns n random bytes as lower-case hex (2n chars).
func NewDeviceToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("device token size must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
