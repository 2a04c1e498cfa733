// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend clients created in ConnectDB and handed to
// EnsureSchema, Startup, BuildHandler and Shutdown.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage holds CMS images.
	FileStorage storage.Store

	// Redis is nil unless the login throttle uses the redis backend.
	Redis redis.UniversalClient
}
