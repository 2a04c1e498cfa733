// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names shared by the stores.
const (
	Users           = "users"
	Admins          = "admins"
	Events          = "events"
	Bookings        = "bookings"
	Categories      = "categories"
	Leads           = "leads"
	Services        = "services"
	CMSPages        = "cms_pages"
	Invoices        = "invoices"
	SystemLogs      = "system_logs"
	LoginActivities = "login_activities"
	LoginThrottle   = "login_throttle"
)

/*
EnsureAll is called at startup and by the test harness. Each collection set
is reconciled independently; problems are aggregated so startup fails with
the full picture.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range sets() {
		if err := ensureIndexSet(ctx, db.Collection(set.coll), set.models); err != nil {
			problems = append(problems, set.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	coll   string
	models []mongo.IndexModel
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func sets() []indexSet {
	return []indexSet{
		{Users, []mongo.IndexModel{
			uniq("uniq_users_email", bson.D{{Key: "email", Value: 1}}),
			idx("idx_users_role_created", bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{Admins, []mongo.IndexModel{
			uniq("uniq_admins_email", bson.D{{Key: "email", Value: 1}}),
		}},
		{Events, []mongo.IndexModel{
			idx("idx_events_date", bson.D{{Key: "date", Value: 1}}),
			idx("idx_events_status_date", bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}),
			idx("idx_events_organizer", bson.D{{Key: "organizer", Value: 1}}),
		}},
		{Bookings, []mongo.IndexModel{
			idx("idx_bookings_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_bookings_event", bson.D{{Key: "event_id", Value: 1}}),
			idx("idx_bookings_status_created", bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{Categories, []mongo.IndexModel{
			uniq("uniq_categories_name_ci", bson.D{{Key: "name_ci", Value: 1}}),
		}},
		{Leads, []mongo.IndexModel{
			idx("idx_leads_created", bson.D{{Key: "created_at", Value: -1}}),
			idx("idx_leads_status", bson.D{{Key: "status", Value: 1}}),
		}},
		{Services, []mongo.IndexModel{
			idx("idx_services_active_created", bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_services_title", bson.D{{Key: "title", Value: 1}}),
		}},
		{CMSPages, []mongo.IndexModel{
			uniq("uniq_cms_slug", bson.D{{Key: "slug", Value: 1}}),
			idx("idx_cms_updated", bson.D{{Key: "last_updated", Value: -1}}),
		}},
		{Invoices, []mongo.IndexModel{
			uniq("uniq_invoices_invoice_id", bson.D{{Key: "invoice_id", Value: 1}}),
			idx("idx_invoices_date", bson.D{{Key: "date", Value: -1}}),
		}},
		{SystemLogs, []mongo.IndexModel{
			idx("idx_syslog_timestamp", bson.D{{Key: "timestamp", Value: -1}}),
			idx("idx_syslog_module_timestamp", bson.D{{Key: "module", Value: 1}, {Key: "timestamp", Value: -1}}),
		}},
		{LoginActivities, []mongo.IndexModel{
			idx("idx_loginact_created", bson.D{{Key: "created_at", Value: -1}}),
			idx("idx_loginact_account_created", bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{LoginThrottle, []mongo.IndexModel{
			uniq("uniq_throttle_key", bson.D{{Key: "key", Value: 1}}),
			{
				// Stale windows expire a day after the last attempt.
				Keys:    bson.D{{Key: "last_attempt", Value: 1}},
				Options: options.Index().SetName("idx_throttle_last_attempt_ttl").SetExpireAfterSeconds(86400),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name        string `bson:"name"`
	Key         bson.D `bson:"key"`
	Unique      *bool  `bson:"unique,omitempty"`
	ExpireAfter *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func ttlVal(v *int32) int32 {
	if v == nil {
		return -1
	}
	return *v
}

func sameOptions(want *options.IndexOptions, have existingIndex) bool {
	if boolVal(want.Unique) != boolVal(have.Unique) {
		return false
	}
	return ttlVal(want.ExpireAfterSeconds) == ttlVal(have.ExpireAfter)
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(ix.Key)] = ix
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		name := *m.Options.Name
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameOptions(m.Options, ex) {
				continue
			}
			// Options changed (unique or TTL): drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop failed: %v", name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
