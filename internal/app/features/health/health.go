// internal/app/features/health/health.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler provides health check endpoints.
type Handler struct {
	mongoClient *mongo.Client
	redisClient redis.UniversalClient // nil when the throttle uses Mongo
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler. redisClient may be nil.
func NewHandler(mongoClient *mongo.Client, redisClient redis.UniversalClient, logger *zap.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the health endpoints directly on the root router:
//   - /ready, /readyz - readiness check
//   - /livez - liveness check
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// pingAll pings every configured backend and reports each by name.
func (h *Handler) pingAll(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()

	out := map[string]error{
		"mongodb": h.mongoClient.Ping(ctx, readpref.Primary()),
	}
	if h.redisClient != nil {
		out["redis"] = h.redisClient.Ping(ctx).Err()
	}
	return out
}

// Check reports every backend. Any failure makes the service degraded.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	for name, err := range h.pingAll(r.Context()) {
		if err != nil {
			resp.Status = "degraded"
			resp.Services[name] = "unavailable"
			h.logger.Warn("health check: ping failed", zap.String("service", name), zap.Error(err))
			continue
		}
		resp.Services[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

// Ready checks if the service is ready to accept requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	for name, err := range h.pingAll(r.Context()) {
		if err != nil {
			h.logger.Warn("readiness check failed", zap.String("service", name), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
	}
	w.Write([]byte(`{"status":"ready"}`))
}

// Live checks if the process is alive. It touches no backend.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}
