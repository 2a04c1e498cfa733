// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "EVENTHUB"

// devJWTSecret is the default signing key. It is rejected in production.
const devJWTSecret = "dev-only-jwt-secret-change-me-0123456789ABCDEF"

// minJWTSecretLen is the shortest signing key accepted in production.
const minJWTSecretLen = 32

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: EVENTHUB_MONGO_URI, EVENTHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "eventhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Identity and device tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 signing key for identity tokens (32+ chars in production)"},
	{Name: "jwt_issuer", Default: "eventhub", Desc: "Issuer claim for identity tokens"},
	{Name: "jwt_ttl", Default: "720h", Desc: "Identity token lifetime"},
	{Name: "user_device_token_bytes", Default: 32, Desc: "Random bytes in a user device token"},
	{Name: "admin_device_token_bytes", Default: 16, Desc: "Random bytes in an admin device token"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for login attempts"},
	{Name: "rate_limit_backend", Default: "mongo", Desc: "Login throttle backend: 'mongo' or 'redis'"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed login attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	// Redis
	{Name: "redis_addr", Default: "", Desc: "Redis address (host:port), required for the redis throttle backend"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	{Name: "activity_log", Default: activitylog.DestAll, Desc: "System log destination: 'all', 'db', 'log', or 'off'"},

	// Seeding
	{Name: "seed_admins_file", Default: "", Desc: "YAML file of admins to create or refresh at startup"},
	{Name: "seed_admin_email", Default: "", Desc: "Email of an admin to create or refresh at startup"},
	{Name: "seed_admin_name", Default: "Admin", Desc: "Name of the seeded admin"},
	{Name: "seed_admin_password", Default: "", Desc: "Password of the seeded admin"},
	{Name: "seed_admin_role", Default: models.AdminRoleSuperAdmin, Desc: "Role of the seeded admin"},
	{Name: "seed_catalog", Default: true, Desc: "Insert the service catalog and default categories when empty"},

	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},
	{Name: "cors_origins", Default: "", Desc: "Comma-separated allowed origins (blank allows any)"},
	{Name: "login_activity_retention", Default: "2160h", Desc: "Delete login activity older than this (0 keeps it)"},

	// Invoice letterhead
	{Name: "invoice_company_name", Default: "", Desc: "Company name printed on invoices"},
	{Name: "invoice_company_address", Default: "", Desc: "Company address lines, separated by '|'"},
	{Name: "invoice_company_gstin", Default: "", Desc: "GSTIN printed on invoices"},
	{Name: "invoice_support_email", Default: "", Desc: "Support email printed on invoices"},
	{Name: "invoice_support_phone", Default: "", Desc: "Support phone printed on invoices"},

	// Database operation timeouts
	{Name: "timeout_ping", Default: "", Desc: "Timeout for health pings (blank keeps the default)"},
	{Name: "timeout_short", Default: "", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "", Desc: "Timeout for list and aggregate operations"},
	{Name: "timeout_long", Default: "", Desc: "Timeout for exports and bulk operations"},
}

// LoadConfig loads WAFFLE core config and EventHub's app config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, EVENTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:             appValues.String("jwt_secret"),
		JWTIssuer:             appValues.String("jwt_issuer"),
		JWTTTL:                appValues.Duration("jwt_ttl", 30*24*time.Hour),
		UserDeviceTokenBytes:  appValues.Int("user_device_token_bytes"),
		AdminDeviceTokenBytes: appValues.Int("admin_device_token_bytes"),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitBackend:       strings.ToLower(appValues.String("rate_limit_backend")),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		ActivityLog: strings.ToLower(appValues.String("activity_log")),

		// Seeding
		SeedAdminsFile:    appValues.String("seed_admins_file"),
		SeedAdminEmail:    appValues.String("seed_admin_email"),
		SeedAdminName:     appValues.String("seed_admin_name"),
		SeedAdminPassword: appValues.String("seed_admin_password"),
		SeedAdminRole:     appValues.String("seed_admin_role"),
		SeedCatalog:       appValues.Bool("seed_catalog"),

		MetricsEnabled:         appValues.Bool("metrics_enabled"),
		CORSOrigins:            splitList(appValues.String("cors_origins"), ","),
		LoginActivityRetention: appValues.Duration("login_activity_retention", 90*24*time.Hour),

		// Invoice letterhead
		InvoiceCompanyName:    appValues.String("invoice_company_name"),
		InvoiceCompanyAddress: splitList(appValues.String("invoice_company_address"), "|"),
		InvoiceCompanyGSTIN:   appValues.String("invoice_company_gstin"),
		InvoiceSupportEmail:   appValues.String("invoice_support_email"),
		InvoiceSupportPhone:   appValues.String("invoice_support_phone"),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// splitList splits s on sep, trimming entries and dropping blanks.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation. Every problem is
// reported; startup aborts if there is at least one.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}

	if coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret {
			errs = append(errs, errors.New("jwt_secret must be changed from the development default in production"))
		} else if len(appCfg.JWTSecret) < minJWTSecretLen {
			errs = append(errs, fmt.Errorf("jwt_secret must be at least %d characters in production", minJWTSecretLen))
		}
	}
	if appCfg.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if appCfg.JWTTTL <= 0 {
		errs = append(errs, errors.New("jwt_ttl must be positive"))
	}

	if appCfg.UserDeviceTokenBytes <= 0 || appCfg.AdminDeviceTokenBytes <= 0 {
		errs = append(errs, errors.New("device token sizes must be positive"))
	}

	switch appCfg.StorageType {
	case "local", "":
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			errs = append(errs, errors.New("storage_s3_bucket and storage_s3_region are required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_type %q (want local or s3)", appCfg.StorageType))
	}

	if appCfg.RateLimitEnabled {
		switch appCfg.RateLimitBackend {
		case "mongo", "":
		case "redis":
			if appCfg.RedisAddr == "" {
				errs = append(errs, errors.New("redis_addr is required when rate_limit_backend is redis"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown rate_limit_backend %q (want mongo or redis)", appCfg.RateLimitBackend))
		}
		if appCfg.RateLimitLoginAttempts <= 0 {
			errs = append(errs, errors.New("rate_limit_login_attempts must be positive"))
		}
	}

	if !activitylog.ValidDest(appCfg.ActivityLog) {
		errs = append(errs, fmt.Errorf("unknown activity_log %q (want all, db, log or off)", appCfg.ActivityLog))
	}

	if appCfg.SeedAdminEmail != "" && !models.IsValidAdminRole(appCfg.SeedAdminRole) {
		errs = append(errs, fmt.Errorf("seed_admin_role %q is not an admin role", appCfg.SeedAdminRole))
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}
