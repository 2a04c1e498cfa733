// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	loginactivitystore "github.com/dalemusser/eventhub/internal/app/store/loginactivity"
	"github.com/dalemusser/eventhub/internal/app/store/storeutil"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler serves the login activity views for admins.
type Handler struct {
	store  *loginactivitystore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new activity Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  loginactivitystore.New(db),
		errLog: errLog,
		logger: logger,
	}
}

type activityPage struct {
	Activities []models.LoginActivity `json:"activities"`
	Page       int                    `json:"page"`
	Pages      int64                  `json:"pages"`
	Total      int64                  `json:"total"`
}

// List handles GET /api/admin/login-activities?page=&limit=. With
// ?accountId= it returns that account's newest attempts instead.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := normalize.Paging(q.Get("page"), q.Get("limit"), defaultLimit, maxLimit)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if raw := strings.TrimSpace(q.Get("accountId")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Account ID is not a valid ID")
			return
		}
		recs, err := h.store.ByAccount(ctx, id, int64(limit))
		if err != nil {
			h.errLog.ServerError(w, r, "failed to load account login activity", err, zap.String("account_id", raw))
			return
		}
		jsonutil.OK(w, activityPage{Activities: recs, Page: 1, Pages: 1, Total: int64(len(recs))})
		return
	}

	recs, total, err := h.store.Page(ctx, int64(page), int64(limit))
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list login activity", err)
		return
	}
	jsonutil.OK(w, activityPage{
		Activities: recs,
		Page:       page,
		Pages:      storeutil.Pages(total, int64(limit)),
		Total:      total,
	})
}
