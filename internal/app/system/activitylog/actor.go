package activitylog

import (
	"context"

	"github.com/dalemusser/eventhub/internal/domain/models"
)

// Actor is who an activity entry is attributed to.
type Actor struct {
	Name string
	Role string
}

// System is the actor used when no account is attached to the request.
var System = Actor{Name: models.SystemActorName, Role: models.SystemActorRole}

type actorKey struct{}

// WithActor returns ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx, or System.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return System
}

// UserActor attributes entries to a user by name and role.
func UserActor(name, role string) Actor {
	return Actor{Name: name, Role: role}
}

// AdminActor attributes entries to an admin; the role is always "Admin".
func AdminActor(name string) Actor {
	return Actor{Name: name, Role: "Admin"}
}
