// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from EVENTHUB_* environment variables, a config file, or
// command-line flags (see LoadConfig). Framework settings such as ports,
// TLS, log level and CORS live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Identity tokens
	JWTSecret string        // HS256 signing key
	JWTIssuer string        // iss claim
	JWTTTL    time.Duration // identity token lifetime

	// Device tokens are this many random bytes, hex encoded.
	UserDeviceTokenBytes  int
	AdminDeviceTokenBytes int

	// Login throttle
	RateLimitEnabled       bool
	RateLimitBackend       string // "mongo" or "redis"
	RateLimitLoginAttempts int
	RateLimitLoginWindow   time.Duration
	RateLimitLoginLockout  time.Duration

	// Redis (required when RateLimitBackend is "redis")
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// File storage for CMS images
	StorageType      string // "local" or "s3"
	StorageLocalPath string
	StorageLocalURL  string

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string

	// ActivityLog selects where system log entries go: all, db, log, off.
	ActivityLog string

	// Seeding
	SeedAdminsFile    string
	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string
	SeedAdminRole     string
	SeedCatalog       bool

	MetricsEnabled bool

	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins []string

	// LoginActivityRetention is how long login activity is kept. Zero keeps it forever.
	LoginActivityRetention time.Duration

	// Invoice letterhead; empty fields fall back to the built-in defaults.
	InvoiceCompanyName    string
	InvoiceCompanyAddress []string
	InvoiceCompanyGSTIN   string
	InvoiceSupportEmail   string
	InvoiceSupportPhone   string

	// Per-operation database timeouts; zero keeps the package defaults.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
