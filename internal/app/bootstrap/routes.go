// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	activityfeature "github.com/dalemusser/eventhub/internal/app/features/activity"
	auditlogfeature "github.com/dalemusser/eventhub/internal/app/features/auditlog"
	billingfeature "github.com/dalemusser/eventhub/internal/app/features/billing"
	bookingsfeature "github.com/dalemusser/eventhub/internal/app/features/bookings"
	categoriesfeature "github.com/dalemusser/eventhub/internal/app/features/categories"
	cmsfeature "github.com/dalemusser/eventhub/internal/app/features/cms"
	dashboardfeature "github.com/dalemusser/eventhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/eventhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	homefeature "github.com/dalemusser/eventhub/internal/app/features/home"
	jobsfeature "github.com/dalemusser/eventhub/internal/app/features/jobs"
	leadsfeature "github.com/dalemusser/eventhub/internal/app/features/leads"
	loginfeature "github.com/dalemusser/eventhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/eventhub/internal/app/features/logout"
	marketplacefeature "github.com/dalemusser/eventhub/internal/app/features/marketplace"
	profilefeature "github.com/dalemusser/eventhub/internal/app/features/profile"
	registerfeature "github.com/dalemusser/eventhub/internal/app/features/register"
	systemusersfeature "github.com/dalemusser/eventhub/internal/app/features/systemusers"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	loginactivitystore "github.com/dalemusser/eventhub/internal/app/store/loginactivity"
	"github.com/dalemusser/eventhub/internal/app/store/ratelimit"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/apicors"
	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/app/system/invoicepdf"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/sessionauth"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// throttlePrefix namespaces login throttle keys in Redis.
const throttlePrefix = "eventhub:login:"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Both realms authenticate with a bearer
// identity token plus the X-Device-Token header; there are no cookies, so
// there is no CSRF layer.
//
// Route map:
//   - /api/user    register, login, logout, logout-all, profile
//   - /api/admin   login, logout, register, profile, stats, organizers,
//     users, events, login-activities, system-logs, seed, jobs
//   - /api/events, /api/bookings, /api/categories, /api/leads,
//     /api/v1/marketplace, /api/cms, /api/v1/billing
//   - /health, /ready, /readyz, /livez, /metrics, /
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	activity := activitylog.New(systemlogstore.New(db), logger, appCfg.ActivityLog)

	var m *metrics.Metrics
	if appCfg.MetricsEnabled {
		m = metrics.New()
	}

	issuer := tokens.NewIssuer(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL)
	users := userstore.New(db)
	admins := adminstore.New(db)
	userGuard := devicebind.NewUserGuard(issuer, users, m, logger)
	adminGuard := devicebind.NewAdminGuard(issuer, admins, m, logger)

	authDeps := sessionauth.Deps{
		Issuer:   issuer,
		Throttle: loginThrottle(appCfg, deps, logger),
		Recorder: loginactivitystore.New(db),
		Activity: activity,
		Metrics:  m,
		Logger:   logger,
	}
	userAuth := sessionauth.New(tokens.RealmUser, appCfg.UserDeviceTokenBytes, sessionauth.UserAccounts(users), authDeps)
	adminAuth := sessionauth.New(tokens.RealmAdmin, appCfg.AdminDeviceTokenBytes, sessionauth.AdminAccounts(admins), authDeps)

	r := chi.NewRouter()

	// Request IDs first so every later log line can carry one.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Abort requests that run longer than 30 seconds.
	r.Use(chimw.Timeout(30 * time.Second))

	if m != nil {
		r.Use(m.Middleware)
	}

	// Header-authenticated API, so CORS never allows credentials.
	r.Use(apicors.Middleware(appCfg.CORSOrigins))

	// Security headers (X-Content-Type-Options, X-Frame-Options, etc.)
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// Locally stored CMS images; S3 serves its own URLs.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	loginHandler := loginfeature.NewHandler(userAuth, adminAuth, errLog, logger)
	logoutHandler := logoutfeature.NewHandler(db, activity, errLog, logger)
	registerHandler := registerfeature.NewHandler(db, issuer, activity, errLog, logger)
	profileHandler := profilefeature.NewHandler(db, issuer, activity, errLog, logger)

	r.Route("/api/user", userRoutes(registerHandler, loginHandler, logoutHandler, profileHandler, userGuard.Require))

	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	sysUsersHandler := systemusersfeature.NewHandler(db, activity, errLog, logger)
	activityHandler := activityfeature.NewHandler(db, errLog, logger)
	auditLogHandler := auditlogfeature.NewHandler(db, errLog, logger)
	eventsHandler := eventsfeature.NewHandler(db, activity, errLog, logger)

	r.Route("/api/admin", func(sr chi.Router) {
		sr.Post("/login", loginHandler.Admin)
		sr.Group(func(gr chi.Router) {
			gr.Use(adminGuard.Require)
			gr.Post("/logout", logoutHandler.Admin)
			gr.Post("/register", registerHandler.Admin)
			gr.Get("/profile", profileHandler.Admin)
			gr.Put("/profile", profileHandler.UpdateAdmin)
			gr.Get("/stats", dashboardHandler.Stats)
			gr.Get("/organizers", sysUsersHandler.Organizers)
			gr.Get("/users", sysUsersHandler.Users)
			gr.Get("/events", eventsHandler.AdminList)
			gr.Get("/login-activities", activityHandler.List)
			gr.Get("/login-activities/export.csv", activityHandler.ExportCSV)
			gr.Get("/system-logs", auditLogHandler.List)
			gr.Get("/system-logs/modules", auditLogHandler.Modules)
			gr.Post("/seed", sysUsersHandler.Seed)
			if taskRunner != nil {
				gr.Mount("/jobs", jobsfeature.Routes(jobsfeature.NewHandler(taskRunner, errLog, logger)))
			}
		})
	})

	r.Mount("/api/events", eventsfeature.Routes(eventsHandler, adminGuard.Require))
	r.Mount("/api/bookings", bookingsfeature.Routes(
		bookingsfeature.NewHandler(db, activity, errLog, logger), userGuard.Require, adminGuard.Require))
	r.Mount("/api/categories", categoriesfeature.Routes(
		categoriesfeature.NewHandler(db, activity, errLog, logger), adminGuard.Require))
	r.Mount("/api/leads", leadsfeature.Routes(
		leadsfeature.NewHandler(db, activity, errLog, logger), adminGuard.Require))
	r.Mount("/api/v1/marketplace", marketplacefeature.Routes(
		marketplacefeature.NewHandler(db, activity, errLog, logger), adminGuard.Require))
	r.Mount("/api/cms", cmsfeature.Routes(
		cmsfeature.NewHandler(db, deps.FileStorage, activity, errLog, logger), adminGuard.Require))
	r.Mount("/api/v1/billing", billingfeature.Routes(
		billingfeature.NewHandler(db, letterhead(appCfg), activity, errLog, logger), adminGuard.Require))

	r.Mount("/", homefeature.Routes())

	logger.Info("router ready",
		zap.Bool("metrics", m != nil),
		zap.Bool("login_throttle", authDeps.Throttle != nil),
		zap.String("activity_log", appCfg.ActivityLog))
	return r, nil
}

// userRoutes mounts the user realm: open auth endpoints plus the profile
// behind the device-bound guard.
func userRoutes(
	register *registerfeature.Handler,
	login *loginfeature.Handler,
	logout *logoutfeature.Handler,
	profile *profilefeature.Handler,
	guard func(http.Handler) http.Handler,
) func(chi.Router) {
	return func(sr chi.Router) {
		sr.Post("/register", register.User)
		sr.Post("/login", login.User)
		sr.Post("/logout", logout.User)
		sr.Post("/logout-all", logout.UserAll)
		sr.Group(func(gr chi.Router) {
			gr.Use(guard)
			gr.Get("/profile", profile.User)
			gr.Put("/profile", profile.UpdateUser)
		})
	}
}

// loginThrottle returns the configured throttle backend, or nil when rate
// limiting is off.
func loginThrottle(appCfg AppConfig, deps DBDeps, logger *zap.Logger) sessionauth.Throttle {
	if !appCfg.RateLimitEnabled {
		return nil
	}
	policy := ratelimit.Policy{
		MaxAttempts: appCfg.RateLimitLoginAttempts,
		Window:      appCfg.RateLimitLoginWindow,
		Lockout:     appCfg.RateLimitLoginLockout,
	}
	if appCfg.RateLimitBackend == "redis" && deps.Redis != nil {
		logger.Info("login throttle backed by Redis")
		return ratelimit.NewRedis(deps.Redis, throttlePrefix, policy)
	}
	return ratelimit.New(deps.MongoDatabase, policy)
}

// letterhead maps the invoice_* settings onto the PDF letterhead.
func letterhead(appCfg AppConfig) invoicepdf.Letterhead {
	return invoicepdf.Letterhead{
		CompanyName:  appCfg.InvoiceCompanyName,
		Address:      appCfg.InvoiceCompanyAddress,
		GSTIN:        appCfg.InvoiceCompanyGSTIN,
		SupportEmail: appCfg.InvoiceSupportEmail,
		SupportPhone: appCfg.InvoiceSupportPhone,
	}
}
