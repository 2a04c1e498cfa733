// internal/app/system/activitylog/logger.go
package activitylog

import (
	"context"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for activity entries.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"
	DestLog = "log"
	DestOff = "off"
)

// Common actions and modules.
const (
	ActionCreated       = "CREATED"
	ActionUpdated       = "UPDATED"
	ActionUpdatedStatus = "UPDATED_STATUS"
	ActionDeleted       = "DELETED"
	ActionGenerated     = "GENERATED"
	ActionLogin         = "LOGIN"
	ActionLogout        = "LOGOUT"
	ActionRegistered    = "REGISTERED"

	ModuleAuth        = "AUTH"
	ModuleEvent       = "EVENT"
	ModuleCRM         = "CRM"
	ModuleCMS         = "CMS"
	ModuleBilling     = "BILLING"
	ModuleMarketplace = "MARKETPLACE"
	ModuleBooking     = "BOOKING"
	ModuleCategory    = "CATEGORY"
)

// Appender persists entries. *systemlogstore.Store satisfies it.
type Appender interface {
	Append(ctx context.Context, entry models.SystemLog) error
}

// Logger records business activity with the caller resolved from the
// request context. It never reports failure to its caller.
type Logger struct {
	store  Appender
	zapLog *zap.Logger
	dest   string
}

// New creates a Logger writing to dest (all, db, log or off).
func New(store Appender, zapLog *zap.Logger, dest string) *Logger {
	return &Logger{store: store, zapLog: zapLog, dest: dest}
}

// Log appends an entry for action on target. A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, action, module, target string, details map[string]any) {
	if l == nil || l.dest == DestOff {
		return
	}

	actor := ActorFrom(ctx)
	entry := models.SystemLog{
		User:      actor.Name,
		Role:      actor.Role,
		Action:    action,
		Module:    module,
		Target:    target,
		Details:   details,
		Timestamp: time.Now(),
	}

	if l.dest == DestAll || l.dest == DestLog {
		l.zapLog.Info("activity",
			zap.String("user", entry.User),
			zap.String("role", entry.Role),
			zap.String("action", action),
			zap.String("module", module),
			zap.String("target", target),
			zap.Any("details", details),
		)
	}

	if l.dest == DestAll || l.dest == DestDB {
		// The request may already be finished; the write should not be cut short.
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.store.Append(wctx, entry); err != nil {
			l.zapLog.Error("failed to store activity",
				zap.Error(err),
				zap.String("action", action),
				zap.String("module", module),
			)
		}
	}
}

// ValidDest reports whether s names a destination.
func ValidDest(s string) bool {
	switch s {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// IDDetail is the common {"id": ...} details payload.
func IDDetail(id primitive.ObjectID) map[string]any {
	return map[string]any{"id": id.Hex()}
}
