// internal/app/features/auditlog/auditlog.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/app/store/storeutil"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	pageSize    = 50
	maxPageSize = 200
)

// Handler serves the system log for admins.
type Handler struct {
	store  *systemlogstore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new audit log Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  systemlogstore.New(db),
		errLog: errLog,
		logger: logger,
	}
}

// moduleOption is one entry of the module filter.
type moduleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// allModules returns the modules activity is logged under.
func allModules() []moduleOption {
	return []moduleOption{
		{Value: activitylog.ModuleAuth, Label: "Authentication"},
		{Value: activitylog.ModuleEvent, Label: "Events"},
		{Value: activitylog.ModuleBooking, Label: "Bookings"},
		{Value: activitylog.ModuleCategory, Label: "Categories"},
		{Value: activitylog.ModuleCRM, Label: "CRM"},
		{Value: activitylog.ModuleCMS, Label: "CMS"},
		{Value: activitylog.ModuleBilling, Label: "Billing"},
		{Value: activitylog.ModuleMarketplace, Label: "Marketplace"},
	}
}

type logPage struct {
	Logs   []models.SystemLog `json:"logs"`
	Module string             `json:"module,omitempty"`
	Page   int                `json:"page"`
	Pages  int64              `json:"pages"`
	Total  int64              `json:"total"`
}

// List handles GET /api/admin/system-logs?page=&limit=&module=. The module
// filter is case-insensitive.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := normalize.Paging(q.Get("page"), q.Get("limit"), pageSize, maxPageSize)
	module := strings.ToUpper(strings.TrimSpace(q.Get("module")))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	logs, total, err := h.store.Page(ctx, module, int64(page), int64(limit))
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list system logs", err, zap.String("module", module))
		return
	}
	jsonutil.OK(w, logPage{
		Logs:   logs,
		Module: module,
		Page:   page,
		Pages:  storeutil.Pages(total, int64(limit)),
		Total:  total,
	})
}

// Modules handles GET /api/admin/system-logs/modules.
func (h *Handler) Modules(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, allModules())
}
