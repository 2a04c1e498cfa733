// internal/app/features/profile/profile.go
package profile

import (
	"errors"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgProfileUpdated     = "Profile updated"
	msgInvalidBody        = "Invalid request body"
	msgInvalidGender      = "Gender must be male, female or other"
	msgInvalidDOB         = "Date of birth must be YYYY-MM-DD"
	msgNameEmpty          = "Name cannot be empty"
	msgCurrentPasswordReq = "Current password is required to set a new password"
	msgIncorrectPassword  = "Incorrect current password"
	msgEmailInUse         = "Email already in use"
	msgAdminNotFound      = "Admin not found"
	msgUserNotFound       = "User not found"
)

// Handler serves the self-service profile of both realms.
type Handler struct {
	users    *userstore.Store
	admins   *adminstore.Store
	issuer   *tokens.Issuer
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new profile Handler. issuer signs the fresh
// identity token returned after an admin profile update.
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

// User handles GET /api/user/profile.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	u, ok := devicebind.UserFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}
	jsonutil.OK(w, u)
}

type userUpdateRequest struct {
	Name        *string        `json:"name"`
	Bio         *string        `json:"bio"`
	Phone       *string        `json:"phone"`
	City        *string        `json:"city"`
	State       *string        `json:"state"`
	Location    *string        `json:"location"`
	Gender      *string        `json:"gender"`
	DateOfBirth *string        `json:"dateOfBirth"`
	Interests   []string       `json:"interests"`
	Social      *models.Social `json:"social"`
}

// UpdateUser handles PUT /api/user/profile. Absent fields are unchanged.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := devicebind.UserFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}

	var in userUpdateRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}

	upd := userstore.ProfileUpdate{
		Bio:       in.Bio,
		Phone:     in.Phone,
		City:      in.City,
		State:     in.State,
		Location:  in.Location,
		Interests: in.Interests,
		Social:    in.Social,
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			jsonutil.BadRequest(w, msgNameEmpty)
			return
		}
		upd.Name = in.Name
	}
	if in.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*in.Gender))
		if !models.IsValidGender(g) {
			jsonutil.BadRequest(w, msgInvalidGender)
			return
		}
		upd.Gender = &g
	}
	if in.DateOfBirth != nil && strings.TrimSpace(*in.DateOfBirth) != "" {
		dob, err := parseDate(*in.DateOfBirth)
		if err != nil {
			jsonutil.BadRequest(w, msgInvalidDOB)
			return
		}
		upd.DateOfBirth = &dob
	}

	updated, err := h.users.UpdateProfile(r.Context(), u.ID, upd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgUserNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to update user profile", err, zap.String("user_id", u.ID.Hex()))
		return
	}

	jsonutil.OK(w, map[string]any{
		"message": msgProfileUpdated,
		"user":    updated,
	})
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Admin handles GET /api/admin/profile.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	a, ok := devicebind.AdminFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}
	jsonutil.OK(w, a)
}

type adminUpdateRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Bio             *string `json:"bio"`
	Avatar          *string `json:"avatar"`
	Password        string  `json:"password"`
	CurrentPassword string  `json:"currentPassword"`
}

type adminProfileResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Phone  string `json:"phone"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
	Token  string `json:"token"`
}

// UpdateAdmin handles PUT /api/admin/profile. Empty name or email keeps
// the current value; phone, bio and avatar may be cleared with "". A new
// password requires the current one.
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	a, ok := devicebind.AdminFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}

	var in adminUpdateRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}

	upd := adminstore.ProfileUpdate{Phone: in.Phone, Bio: in.Bio, Avatar: in.Avatar}
	if name := strings.TrimSpace(in.Name); name != "" {
		upd.Name = &name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if !authutil.ValidEmail(email) {
			jsonutil.BadRequest(w, authutil.ErrInvalidEmail.Error())
			return
		}
		upd.Email = &email
	}

	passwordChanged := false
	if in.Password != "" {
		if in.CurrentPassword == "" {
			jsonutil.BadRequest(w, msgCurrentPasswordReq)
			return
		}
		if !authutil.CheckPassword(in.CurrentPassword, a.PasswordHash) {
			jsonutil.Unauthorized(w, msgIncorrectPassword)
			return
		}
		if err := authutil.ValidatePassword(in.Password); err != nil {
			jsonutil.BadRequest(w, err.Error())
			return
		}
		hash, err := authutil.HashPassword(in.Password)
		if err != nil {
			h.errLog.ServerError(w, r, "failed to hash password", err)
			return
		}
		upd.PasswordHash = &hash
		passwordChanged = true
	}

	updated, err := h.admins.UpdateProfile(r.Context(), a.ID, upd)
	switch {
	case errors.Is(err, adminstore.ErrDuplicateEmail):
		jsonutil.BadRequest(w, msgEmailInUse)
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonutil.NotFound(w, msgAdminNotFound)
		return
	case err != nil:
		h.errLog.ServerError(w, r, "failed to update admin profile", err, zap.String("admin_id", a.ID.Hex()))
		return
	}

	token, err := h.issuer.Issue(tokens.RealmAdmin, updated.ID.Hex())
	if err != nil {
		h.errLog.ServerError(w, r, "failed to issue token", err)
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionUpdated, activitylog.ModuleAuth, updated.Email,
		map[string]any{"passwordChanged": passwordChanged})

	jsonutil.OK(w, adminProfileResponse{
		ID:     updated.ID.Hex(),
		Name:   updated.Name,
		Email:  updated.Email,
		Role:   updated.Role,
		Phone:  updated.Phone,
		Bio:    updated.Bio,
		Avatar: updated.Avatar,
		Token:  token,
	})
}
