// internal/app/features/login/login.go
package login

import (
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/network"
	"github.com/dalemusser/eventhub/internal/app/system/sessionauth"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"go.uber.org/zap"
)

const msgCredentialsRequired = "Email and password are required"

// Handler serves the login endpoints of both realms.
type Handler struct {
	users  *sessionauth.Service
	admins *sessionauth.Service
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new login Handler.
func NewHandler(
	users *sessionauth.Service,
	admins *sessionauth.Service,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:  users,
		admins: admins,
		errLog: errLog,
		logger: logger,
	}
}

// loginRequest is the body of both login endpoints. DeviceToken is the
// token the client already holds, if any.
type loginRequest struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	DeviceToken string         `json:"deviceToken"`
	DeviceInfo  map[string]any `json:"deviceInfo"`
}

type sessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	DeviceToken string `json:"deviceToken"`
}

type adminSessionResponse struct {
	sessionResponse
	Role        string   `json:"role"`
	Avatar      string   `json:"avatar"`
	Permissions []string `json:"permissions"`
}

// User handles POST /api/user/login.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.login(w, r, h.users, tokens.RealmUser)
	if !ok {
		return
	}
	jsonutil.OK(w, toSessionResponse(sess))
}

// Admin handles POST /api/admin/login.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.login(w, r, h.admins, tokens.RealmAdmin)
	if !ok {
		return
	}
	perms := sess.Account.Permissions
	if perms == nil {
		perms = []string{}
	}
	jsonutil.OK(w, adminSessionResponse{
		sessionResponse: toSessionResponse(sess),
		Role:            sess.Account.Role,
		Avatar:          sess.Account.Avatar,
		Permissions:     perms,
	})
}

// login runs the shared flow and writes every failure response itself.
func (h *Handler) login(w http.ResponseWriter, r *http.Request, svc *sessionauth.Service, realm string) (*sessionauth.Session, bool) {
	var in loginRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, msgCredentialsRequired)
		return nil, false
	}
	// An empty password still goes through the service so the failed
	// attempt is recorded and throttled.
	if strings.TrimSpace(in.Email) == "" {
		jsonutil.BadRequest(w, msgCredentialsRequired)
		return nil, false
	}

	sess, err := svc.Login(r.Context(), sessionauth.Attempt{
		Email:       in.Email,
		Password:    in.Password,
		DeviceToken: strings.TrimSpace(in.DeviceToken),
		DeviceInfo:  in.DeviceInfo,
		IP:          network.ClientIP(r),
		UserAgent:   r.UserAgent(),
	})
	switch {
	case err == nil:
		return sess, true
	case errors.Is(err, sessionauth.ErrInvalidCredentials):
		jsonutil.Unauthorized(w, err.Error())
	case errors.Is(err, sessionauth.ErrDeviceConflict):
		jsonutil.Forbidden(w, err.Error())
	case errors.Is(err, sessionauth.ErrLockedOut):
		jsonutil.TooManyRequests(w, err.Error())
	default:
		h.errLog.ServerError(w, r, "login failed", err, zap.String("realm", realm))
	}
	return nil, false
}

func toSessionResponse(s *sessionauth.Session) sessionResponse {
	return sessionResponse{
		ID:          s.Account.ID.Hex(),
		Name:        s.Account.Name,
		Email:       s.Account.Email,
		Token:       s.Token,
		DeviceToken: s.DeviceToken,
	}
}
