// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	categorystore "github.com/dalemusser/eventhub/internal/app/store/categories"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	loginactivitystore "github.com/dalemusser/eventhub/internal/app/store/loginactivity"
	servicestore "github.com/dalemusser/eventhub/internal/app/store/services"
	"github.com/dalemusser/eventhub/internal/app/system/seeding"
	"github.com/dalemusser/eventhub/internal/app/system/tasks"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It applies the configured timeouts, seeds admins and the catalog, and
// starts the background task runner. Returning an error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	seeds, err := adminSeeds(appCfg)
	if err != nil {
		logger.Error("failed to load admin seeds", zap.Error(err))
		return err
	}
	if len(seeds) > 0 {
		if _, err := seeding.Admins(ctx, adminstore.New(deps.MongoDatabase), seeds, logger); err != nil {
			logger.Error("failed to seed admins", zap.Error(err))
			return err
		}
	}

	if appCfg.SeedCatalog {
		db := deps.MongoDatabase
		if _, err := seeding.Catalog(ctx, servicestore.New(db), categorystore.New(db), logger); err != nil {
			return err
		}
	}

	startTaskRunner(deps.MongoDatabase, appCfg, logger)
	return nil
}

// adminSeeds collects admins from the seed file followed by the single
// admin configured through seed_admin_*.
func adminSeeds(appCfg AppConfig) ([]seeding.AdminSeed, error) {
	var seeds []seeding.AdminSeed
	if appCfg.SeedAdminsFile != "" {
		fromFile, err := seeding.LoadAdminsFile(appCfg.SeedAdminsFile)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, fromFile...)
	}
	if appCfg.SeedAdminEmail != "" {
		seeds = append(seeds, seeding.AdminSeed{
			Name:     appCfg.SeedAdminName,
			Email:    appCfg.SeedAdminEmail,
			Password: appCfg.SeedAdminPassword,
			Role:     appCfg.SeedAdminRole,
		})
	}
	return seeds, nil
}

// taskRunner is the global task runner instance, used by the jobs endpoints
// and for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.LoginActivityRetentionJob(loginactivitystore.New(db), appCfg.LoginActivityRetention, logger))
	taskRunner.Register(tasks.EventCompletionJob(eventstore.New(db), logger))

	taskRunner.Start()
}
