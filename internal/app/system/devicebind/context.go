package devicebind

import (
	"context"

	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/domain/models"
)

type userKey struct{}
type adminKey struct{}

// UserFrom returns the user attached by a user guard.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// AdminFrom returns the admin attached by an admin guard.
func AdminFrom(ctx context.Context) (*models.Admin, bool) {
	a, ok := ctx.Value(adminKey{}).(*models.Admin)
	return a, ok && a != nil
}

// WithUser attaches u and makes it the activity actor.
func WithUser(ctx context.Context, u *models.User) context.Context {
	ctx = context.WithValue(ctx, userKey{}, u)
	return activitylog.WithActor(ctx, activitylog.UserActor(u.Name, u.Role))
}

// WithAdmin attaches a and makes it the activity actor.
func WithAdmin(ctx context.Context, a *models.Admin) context.Context {
	ctx = context.WithValue(ctx, adminKey{}, a)
	return activitylog.WithActor(ctx, activitylog.AdminActor(a.Name))
}
