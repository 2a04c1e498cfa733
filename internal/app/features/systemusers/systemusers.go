// internal/app/features/systemusers/systemusers.go
package systemusers

// Terminology: Account Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) of a platform account
//   - Organizer: a user whose role is "organizer"; events reference it by UserID

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/seeding"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	salesManagerUnassigned = "Not Assigned"
	msgSeedCompleted       = "Admin seeding completed"
	msgNoAdmins            = "At least one admin is required"
)

// Handler provides the admin views over platform accounts.
type Handler struct {
	users    *userstore.Store
	admins   *adminstore.Store
	events   *eventstore.Store
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new system users Handler.
func NewHandler(
	db *mongo.Database,
	activity *activitylog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:    userstore.New(db),
		admins:   adminstore.New(db),
		events:   eventstore.New(db),
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

// organizerRow is a user document extended with event counts.
type organizerRow struct {
	models.User
	Live         int64  `json:"live"`
	Completed    int64  `json:"completed"`
	SalesManager string `json:"salesManager"`
}

// Organizers handles GET /api/admin/organizers.
func (h *Handler) Organizers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		organizers      []models.User
		live, completed map[primitive.ObjectID]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		organizers, err = h.users.ListByRoles(gctx, models.RoleOrganizer)
		return err
	})
	g.Go(func() (err error) {
		live, err = h.events.CountByOrganizer(gctx, models.EventPublished)
		return err
	})
	g.Go(func() (err error) {
		completed, err = h.events.CountByOrganizer(gctx, models.EventCompleted)
		return err
	})
	if err := g.Wait(); err != nil {
		h.errLog.ServerError(w, r, "failed to load organizers", err)
		return
	}

	rows := make([]organizerRow, 0, len(organizers))
	for _, o := range organizers {
		rows = append(rows, organizerRow{
			User:         o,
			Live:         live[o.ID],
			Completed:    completed[o.ID],
			SalesManager: salesManagerUnassigned,
		})
	}
	jsonutil.OK(w, rows)
}

// rolesFor maps the ?role filter to stored roles. No filter lists plain
// "user" accounts; "audience" also matches them since that is what the
// role used to be called.
func rolesFor(role string) []string {
	switch role {
	case "":
		return []string{models.RoleUser}
	case models.RoleAudience:
		return []string{models.RoleAudience, models.RoleUser}
	default:
		return []string{role}
	}
}

// Users handles GET /api/admin/users?role=.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role := normalize.Role(r.URL.Query().Get("role"))
	users, err := h.users.ListByRoles(ctx, rolesFor(role)...)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list users", err, zap.String("role", role))
		return
	}
	jsonutil.OK(w, users)
}

type seedRequest struct {
	Admins []seeding.AdminSeed `json:"admins"`
}

type seedResponse struct {
	Message string                `json:"message"`
	Results []seeding.AdminResult `json:"results"`
}

// Seed handles POST /api/admin/seed. Each admin in the body is created or,
// when the email exists, has its name, role and password replaced.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	var in seedRequest
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, "Invalid request body")
		return
	}
	if len(in.Admins) == 0 {
		jsonutil.BadRequest(w, msgNoAdmins)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	results, err := seeding.Admins(ctx, h.admins, in.Admins, h.logger)
	if err != nil {
		var invalid *seeding.InvalidSeedError
		if errors.As(err, &invalid) {
			jsonutil.BadRequest(w, invalid.Error())
			return
		}
		h.errLog.ServerError(w, r, "failed to seed admins", err)
		return
	}

	for _, res := range results {
		action := activitylog.ActionUpdated
		if res.Status == adminstore.Created {
			action = activitylog.ActionCreated
		}
		h.activity.Log(r.Context(), action, activitylog.ModuleAuth, res.Email,
			map[string]any{"role": res.Role, "source": "seed"})
	}
	jsonutil.OK(w, seedResponse{Message: msgSeedCompleted, Results: results})
}
