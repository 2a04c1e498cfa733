// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	bookingstore "github.com/dalemusser/eventhub/internal/app/store/bookings"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentActivityLimit = 20
	revenueMonths       = 6
)

// Handler serves the admin dashboard summary.
type Handler struct {
	users    *userstore.Store
	events   *eventstore.Store
	bookings *bookingstore.Store
	logs     *systemlogstore.Store
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new dashboard Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		users:    userstore.New(db),
		events:   eventstore.New(db),
		bookings: bookingstore.New(db, logger),
		logs:     systemlogstore.New(db),
		errLog:   errLog,
		logger:   logger,
		now:      time.Now,
	}
}

// StatsVM is the body of GET /api/admin/stats.
type StatsVM struct {
	TotalUsers       int64                       `json:"totalUsers"`
	TotalEvents      int64                       `json:"totalEvents"`
	ActiveOrganizers int64                       `json:"activeOrganizers"`
	TotalRevenue     float64                     `json:"totalRevenue"`
	RecentActivity   []models.SystemLog          `json:"recentActivity"`
	RevenueChart     []bookingstore.MonthRevenue `json:"revenueChart"`
}

// Stats handles GET /api/admin/stats. The counts are independent, so they
// run concurrently and the first failure cancels the rest.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var vm StatsVM
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		// Accounts created before the audience role existed still carry "user".
		vm.TotalUsers, err = h.users.CountByRoles(gctx, models.RoleAudience, models.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		vm.TotalEvents, err = h.events.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		vm.ActiveOrganizers, err = h.users.CountVerifiedOrganizers(gctx)
		return err
	})
	g.Go(func() (err error) {
		vm.TotalRevenue, err = h.bookings.ConfirmedRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		vm.RecentActivity, err = h.logs.Recent(gctx, recentActivityLimit)
		return err
	})
	g.Go(func() (err error) {
		vm.RevenueChart, err = h.bookings.RevenueByMonth(gctx, h.now(), revenueMonths)
		return err
	})

	if err := g.Wait(); err != nil {
		h.errLog.ServerError(w, r, "failed to load dashboard stats", err)
		return
	}
	if vm.RecentActivity == nil {
		vm.RecentActivity = []models.SystemLog{}
	}
	jsonutil.OK(w, vm)
}
