// Package devicebind enforces single-device sessions on protected routes.
//
// A request passes only when it carries a valid identity token for the
// guard's realm and an X-Device-Token equal to the one stored on the
// account. Any later login replaces the stored token, which locks out the
// previous device.
package devicebind

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HeaderDeviceToken carries the device-binding token.
const HeaderDeviceToken = "X-Device-Token"

// Rejection messages.
const (
	MsgNoToken       = "Not authorized, no token"
	MsgTokenFailed   = "Not authorized, token failed"
	MsgNotAuthorized = "Not authorized"
	MsgOtherDevice   = "Logged out from previous device"
)

// UserFinder loads users. *userstore.Store satisfies it.
type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// AdminFinder loads admins. *adminstore.Store satisfies it.
type AdminFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

// Guard is the middleware for one realm. T is the account type it resolves.
type Guard[T any] struct {
	realm   string
	issuer  *tokens.Issuer
	find    func(context.Context, primitive.ObjectID) (*T, error)
	stored  func(*T) *string
	attach  func(context.Context, *T) context.Context
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewUserGuard protects user-realm routes.
func NewUserGuard(issuer *tokens.Issuer, users UserFinder, m *metrics.Metrics, log *zap.Logger) *Guard[models.User] {
	return &Guard[models.User]{
		realm:   tokens.RealmUser,
		issuer:  issuer,
		find:    users.GetByID,
		stored:  func(u *models.User) *string { return u.DeviceToken },
		attach:  WithUser,
		metrics: m,
		log:     log,
	}
}

// NewAdminGuard protects admin-realm routes.
func NewAdminGuard(issuer *tokens.Issuer, admins AdminFinder, m *metrics.Metrics, log *zap.Logger) *Guard[models.Admin] {
	return &Guard[models.Admin]{
		realm:   tokens.RealmAdmin,
		issuer:  issuer,
		find:    admins.GetByID,
		stored:  func(a *models.Admin) *string { return a.DeviceToken },
		attach:  WithAdmin,
		metrics: m,
		log:     log,
	}
}

// Require rejects the request unless it is bound to the account's current
// device. The account is attached to the context for next; nothing is
// written to the store.
func (g *Guard[T]) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		device := r.Header.Get(HeaderDeviceToken)
		if raw == "" || device == "" {
			g.reject(w, "no_token", MsgNoToken)
			return
		}

		claims, err := g.issuer.Verify(g.realm, raw)
		if err != nil {
			g.reject(w, "token_failed", MsgTokenFailed)
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			g.reject(w, "token_failed", MsgTokenFailed)
			return
		}

		acct, err := g.find(r.Context(), id)
		if errors.Is(err, mongo.ErrNoDocuments) {
			g.reject(w, "not_found", MsgNotAuthorized)
			return
		}
		if err != nil {
			g.log.Error("guard account lookup failed",
				zap.String("realm", g.realm),
				zap.String("account_id", id.Hex()),
				zap.Error(err))
			jsonutil.ServerError(w)
			return
		}

		if !sameToken(g.stored(acct), device) {
			g.reject(w, "device_mismatch", MsgOtherDevice)
			return
		}

		next.ServeHTTP(w, r.WithContext(g.attach(r.Context(), acct)))
	})
}

func (g *Guard[T]) reject(w http.ResponseWriter, reason, msg string) {
	g.metrics.GuardRejected(g.realm, reason)
	jsonutil.Unauthorized(w, msg)
}

// bearerToken returns the credential after "Bearer ", or "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// sameToken compares in constant time. A nil stored token never matches.
func sameToken(stored *string, presented string) bool {
	if stored == nil || *stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) == 1
}
