// Package seedctl implements eventhubctl, the operator CLI that runs the
// same seeding code as server startup against a database.
package seedctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	categorystore "github.com/dalemusser/eventhub/internal/app/store/categories"
	servicestore "github.com/dalemusser/eventhub/internal/app/store/services"
	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/app/system/seeding"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type options struct {
	mongoURI string
	database string
	timeout  time.Duration
	verbose  bool
}

// NewRootCommand builds the eventhubctl command tree. Connection flags
// default to EVENTHUB_MONGO_URI and EVENTHUB_MONGO_DATABASE.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "eventhubctl", Short: "EventHub operator tools", SilenceUsage: true}
	cmd.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", envOr("EVENTHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	cmd.PersistentFlags().StringVar(&opts.database, "database", envOr("EVENTHUB_MONGO_DATABASE", "eventhub"), "MongoDB database name")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall deadline for the command")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "log every step")

	seed := &cobra.Command{Use: "seed", Short: "Create or refresh seed data"}
	seed.AddCommand(newSeedAdminsCommand(opts), newSeedCatalogCommand(opts))
	cmd.AddCommand(seed)
	return cmd
}

func newSeedAdminsCommand(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Upsert admins listed in a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := seeding.LoadAdminsFile(file)
			if err != nil {
				return err
			}
			return run(cmd.Context(), opts, func(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
				return seedAdmins(ctx, db, seeds, cmd.OutOrStdout(), logger)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with an admins list")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSeedCatalogCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Insert the service catalog and default categories into empty collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, func(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
				return seedCatalog(ctx, db, cmd.OutOrStdout(), logger)
			})
		},
	}
}

// run connects, ensures indexes and hands the database to fn.
func run(parent context.Context, opts *options, fn func(context.Context, *mongo.Database, *zap.Logger) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()

	logger := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		defer logger.Sync()
	}

	if err := wafflemongo.ValidateURI(opts.mongoURI); err != nil {
		return fmt.Errorf("invalid --mongo-uri: %w", err)
	}
	client, err := wafflemongo.ConnectWithPool(ctx, opts.mongoURI, opts.database, wafflemongo.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(opts.database)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return fn(ctx, db, logger)
}

func seedAdmins(ctx context.Context, db *mongo.Database, seeds []seeding.AdminSeed, out io.Writer, logger *zap.Logger) error {
	results, err := seeding.Admins(ctx, adminstore.New(db), seeds, logger)
	for _, r := range results {
		fmt.Fprintf(out, "%-8s %s (%s)\n", r.Status, r.Email, r.Role)
	}
	return err
}

func seedCatalog(ctx context.Context, db *mongo.Database, out io.Writer, logger *zap.Logger) error {
	res, err := seeding.Catalog(ctx, servicestore.New(db), categorystore.New(db), logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "services inserted: %d\ncategories inserted: %d\n", res.Services, res.Categories)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
