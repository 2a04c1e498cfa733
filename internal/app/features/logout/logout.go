// internal/app/features/logout/logout.go
package logout

import (
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgLoggedOut     = "Logged out successfully"
	msgLoggedOutAll  = "Logged out from all devices successfully"
	msgUserNotFound  = "User not found"
	msgInvalidUserID = "Invalid user id"
	msgEmailRequired = "Email is required"
)

// Handler clears device bindings.
type Handler struct {
	users    *userstore.Store
	admins   *adminstore.Store
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new logout Handler.
func NewHandler(
	db *mongo.Database,
	activity *activitylog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:    userstore.New(db),
		admins:   adminstore.New(db),
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

// User handles POST /api/user/logout {userId}.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"userId"`
	}
	_ = jsonutil.Decode(r, &in)

	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.UserID))
	if err != nil {
		jsonutil.BadRequest(w, msgInvalidUserID)
		return
	}

	found, err := h.users.ClearDeviceToken(r.Context(), id)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to clear device token", err, zap.String("user_id", id.Hex()))
		return
	}
	if !found {
		jsonutil.NotFound(w, msgUserNotFound)
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionLogout, activitylog.ModuleAuth, id.Hex(), nil)
	jsonutil.Message(w, http.StatusOK, msgLoggedOut)
}

// UserAll handles POST /api/user/logout-all {email}. With a single device
// binding per account this clears the same field as User, keyed by email.
func (h *Handler) UserAll(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	_ = jsonutil.Decode(r, &in)

	email := strings.TrimSpace(in.Email)
	if email == "" {
		jsonutil.BadRequest(w, msgEmailRequired)
		return
	}

	found, err := h.users.ClearDeviceTokenByEmail(r.Context(), email)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to clear device token", err, zap.String("email", email))
		return
	}
	if !found {
		jsonutil.NotFound(w, msgUserNotFound)
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionLogout, activitylog.ModuleAuth, strings.ToLower(email),
		map[string]any{"scope": "all"})
	jsonutil.Message(w, http.StatusOK, msgLoggedOutAll)
}

// Admin handles POST /api/admin/logout for the guarded caller.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	admin, ok := devicebind.AdminFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}

	if _, err := h.admins.ClearDeviceToken(r.Context(), admin.ID); err != nil {
		h.errLog.ServerError(w, r, "failed to clear admin device token", err, zap.String("admin_id", admin.ID.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionLogout, activitylog.ModuleAuth, admin.Email, nil)
	jsonutil.Message(w, http.StatusOK, msgLoggedOut)
}
