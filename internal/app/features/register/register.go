// internal/app/features/register/register.go
package register

import (
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgUserExists  = "User already exists"
	msgAdminExists = "Admin already exists"
	msgInvalidRole = "Role must be admin or super_admin"
)

// Handler creates accounts in both realms.
type Handler struct {
	users    *userstore.Store
	admins   *adminstore.Store
	issuer   *tokens.Issuer
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new register Handler.
func NewHandler(
	db *mongo.Database,
	issuer *tokens.Issuer,
	activity *activitylog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:    userstore.New(db),
		admins:   adminstore.New(db),
		issuer:   issuer,
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // admin realm only
}

// accountResponse is returned on 201. The device token is only issued at
// login, so a freshly registered account is not yet bound to a device.
type accountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	Token string `json:"token"`
}

// decode reads and checks the body, writing a 400 when it is unusable.
func decode(w http.ResponseWriter, r *http.Request) (registerRequest, bool) {
	var in registerRequest
	_ = jsonutil.Decode(r, &in)
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)

	err := authutil.CheckRegistration(authutil.Registration{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return in, false
	}
	return in, true
}

// User handles POST /api/user/register.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	in, ok := decode(w, r)
	if !ok {
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to hash password", err)
		return
	}

	u, err := h.users.Create(r.Context(), models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		jsonutil.BadRequest(w, msgUserExists)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to create user", err, zap.String("email", in.Email))
		return
	}

	token, err := h.issuer.Issue(tokens.RealmUser, u.ID.Hex())
	if err != nil {
		h.errLog.ServerError(w, r, "failed to issue token", err, zap.String("user_id", u.ID.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionRegistered, activitylog.ModuleAuth, u.Email,
		map[string]any{"id": u.ID.Hex(), "realm": tokens.RealmUser})
	h.logger.Info("user registered", zap.String("user_id", u.ID.Hex()))

	jsonutil.Created(w, accountResponse{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Token: token,
	})
}

// Admin handles POST /api/admin/register. It sits behind the admin guard,
// so only an existing admin can create another.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	in, ok := decode(w, r)
	if !ok {
		return
	}

	role := normalize.Role(in.Role)
	if role == "" {
		role = models.AdminRoleAdmin
	}
	if !models.IsValidAdminRole(role) {
		jsonutil.BadRequest(w, msgInvalidRole)
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to hash password", err)
		return
	}

	a, err := h.admins.Create(r.Context(), models.Admin{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, adminstore.ErrDuplicateEmail) {
		jsonutil.BadRequest(w, msgAdminExists)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to create admin", err, zap.String("email", in.Email))
		return
	}

	token, err := h.issuer.Issue(tokens.RealmAdmin, a.ID.Hex())
	if err != nil {
		h.errLog.ServerError(w, r, "failed to issue token", err, zap.String("admin_id", a.ID.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionRegistered, activitylog.ModuleAuth, a.Email,
		map[string]any{"id": a.ID.Hex(), "realm": tokens.RealmAdmin, "role": a.Role})

	jsonutil.Created(w, accountResponse{
		ID:    a.ID.Hex(),
		Name:  a.Name,
		Email: a.Email,
		Role:  a.Role,
		Token: token,
	})
}
