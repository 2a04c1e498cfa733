// internal/app/features/jobs/jobs.go
package jobs

import (
	"context"
	"errors"
	"net/http"
	"slices"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/tasks"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgUnknownJob = "Job not found"

// Runner is the part of tasks.Runner the endpoints use.
type Runner interface {
	Jobs() []string
	Running() []string
	RunOnce(ctx context.Context, name string) error
}

// Handler lets admins inspect and trigger background jobs.
type Handler struct {
	runner Runner
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new jobs Handler.
func NewHandler(runner Runner, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, errLog: errLog, logger: logger}
}

// Routes mounts GET / and POST /{name}/run. The caller applies the admin guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{name}/run", h.Run)
	return r
}

type jobStatus struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// List handles GET /api/admin/jobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	running := h.runner.Running()
	out := make([]jobStatus, 0)
	for _, name := range h.runner.Jobs() {
		out = append(out, jobStatus{Name: name, Running: slices.Contains(running, name)})
	}
	jsonutil.OK(w, out)
}

// Run handles POST /api/admin/jobs/{name}/run. The job runs inside the
// request and its error, if any, is reported as a 500.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := h.runner.RunOnce(ctx, name)
	switch {
	case errors.Is(err, tasks.ErrUnknownJob):
		jsonutil.NotFound(w, msgUnknownJob)
		return
	case err != nil:
		h.errLog.ServerError(w, r, "manual job run failed", err, zap.String("job", name))
		return
	}

	by := ""
	if a, ok := devicebind.AdminFrom(r.Context()); ok {
		by = a.Email
	}
	h.logger.Info("job run on demand", zap.String("job", name), zap.String("admin", by))
	jsonutil.OK(w, map[string]string{"message": "Job completed", "job": name})
}
