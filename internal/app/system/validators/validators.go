// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections and attaches JSON-Schema validators
// where one is defined. Deployments without collMod support are skipped
// with an info log.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(indexes.Users, usersSchema())
	ensure(indexes.Admins, adminsSchema())
	ensure(indexes.Events, eventsSchema())
	ensure(indexes.Bookings, bookingsSchema())
	ensure(indexes.Invoices, invoicesSchema())
	ensure(indexes.Categories, nil)
	ensure(indexes.Leads, nil)
	ensure(indexes.Services, nil)
	ensure(indexes.CMSPages, nil)
	ensure(indexes.SystemLogs, nil)
	ensure(indexes.LoginActivities, nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection reports created==true only when it created name.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	if exists, listErr := collectionExists(ctx, db, name); listErr == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var number = bson.A{"int", "long", "double", "decimal"}

func strEnum(values ...string) bson.A {
	a := make(bson.A, len(values))
	for i, v := range values {
		a[i] = v
	}
	return a
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role"},
			"properties": bson.M{
				"name":          bson.M{"bsonType": "string", "minLength": 1},
				"email":         bson.M{"bsonType": "string", "minLength": 3},
				"password_hash": bson.M{"bsonType": "string", "minLength": 1},
				"role":          bson.M{"enum": strEnum(models.AllRoles()...)},
				"status":        bson.M{"enum": strEnum(models.StatusActive, models.StatusBlocked, models.StatusInactive)},
				"device_token":  bson.M{"bsonType": bson.A{"string", "null"}},
			},
		},
	}
}

func adminsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role"},
			"properties": bson.M{
				"email":        bson.M{"bsonType": "string", "minLength": 3},
				"role":         bson.M{"enum": strEnum(models.AdminRoleAdmin, models.AdminRoleSuperAdmin)},
				"device_token": bson.M{"bsonType": bson.A{"string", "null"}},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "date"},
			"properties": bson.M{
				"name":            bson.M{"bsonType": "string", "minLength": 1},
				"available_seats": bson.M{"bsonType": number, "minimum": 0},
				"price":           bson.M{"bsonType": number, "minimum": 0},
			},
		},
	}
}

func bookingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "event_id", "tickets", "total_amount"},
			"properties": bson.M{
				"tickets":      bson.M{"bsonType": "array", "minItems": 1},
				"total_amount": bson.M{"bsonType": number, "minimum": 0},
			},
		},
	}
}

func invoicesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"invoice_id", "services", "total_amount"},
			"properties": bson.M{
				"invoice_id": bson.M{"bsonType": "string", "minLength": 1},
				"status":     bson.M{"enum": strEnum(models.InvoicePaid, models.InvoicePending, models.InvoiceFailed)},
			},
		},
	}
}
