// Package sessionauth implements password login with single-device binding.
//
// A successful login issues a fresh identity token and a fresh device
// token, and stores the device token with a login snapshot in one update.
// Every attempt, successful or not, leaves a LoginActivity record.
package sessionauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/eventhub/internal/app/store/ratelimit"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/eventhub/internal/app/system/useragent"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Login failures. The messages are returned to clients as-is.
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrDeviceConflict     = errors.New("You are already logged in on another device. Please logout first.")
	ErrLockedOut          = errors.New("Too many failed login attempts. Please try again later.")
)

// Account is the realm-neutral view of a user or admin used during login.
type Account struct {
	ID           primitive.ObjectID
	Name         string
	Email        string
	PasswordHash string
	DeviceToken  *string
	Role         string
	Avatar       string
	Permissions  []string
}

// Accounts is the credential store of one realm.
type Accounts interface {
	// Credentials returns mongo.ErrNoDocuments when email is unknown.
	Credentials(ctx context.Context, email string) (*Account, error)
	BindDevice(ctx context.Context, id primitive.ObjectID, deviceToken string, last models.LastLogin) error
}

// Throttle limits failed attempts per key. Both ratelimit backends satisfy it.
type Throttle interface {
	CheckAllowed(ctx context.Context, key string) (allowed bool, remaining int, lockedUntil *time.Time)
	RecordFailure(ctx context.Context, key string) (lockedOut bool, lockedUntil *time.Time)
	ClearOnSuccess(ctx context.Context, key string) error
}

// Recorder stores LoginActivity. *loginactivitystore.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, rec models.LoginActivity) error
}

// Deps are the collaborators shared by both realms. Throttle and Metrics
// may be nil.
type Deps struct {
	Issuer   *tokens.Issuer
	Throttle Throttle
	Recorder Recorder
	Activity *activitylog.Logger
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Service logs accounts of one realm in.
type Service struct {
	realm       string
	deviceBytes int
	accounts    Accounts
	deps        Deps
	now         func() time.Time
}

// New returns a Service for realm issuing device tokens of deviceBytes
// random bytes.
func New(realm string, deviceBytes int, accounts Accounts, deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{
		realm:       realm,
		deviceBytes: deviceBytes,
		accounts:    accounts,
		deps:        deps,
		now:         time.Now,
	}
}

// Attempt is one login request.
type Attempt struct {
	Email       string
	Password    string
	DeviceToken string // candidate token held by the client, may be empty
	DeviceInfo  map[string]any
	IP          string
	UserAgent   string
}

// Session is what a successful login hands back.
type Session struct {
	Account     Account
	Token       string
	DeviceToken string
}

// Login checks the credentials and binds the session to a new device.
// It returns ErrLockedOut, ErrInvalidCredentials, ErrDeviceConflict, or a
// wrapped store error.
func (s *Service) Login(ctx context.Context, a Attempt) (*Session, error) {
	email := normalize.Email(a.Email)
	key := ratelimit.Key(s.realm, email)
	parsed := useragent.Parse(a.UserAgent)

	rec := models.LoginActivity{
		Realm:      s.realm,
		Email:      email,
		IP:         a.IP,
		UserAgent:  a.UserAgent,
		ParsedUA:   parsed,
		DeviceInfo: a.DeviceInfo,
	}

	if s.deps.Throttle != nil {
		if allowed, _, _ := s.deps.Throttle.CheckAllowed(ctx, key); !allowed {
			s.fail(ctx, rec, models.LoginFailureLockedOut, metrics.OutcomeLockedOut)
			return nil, ErrLockedOut
		}
	}

	acct, err := s.accounts.Credentials(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		authutil.BurnCompare(a.Password)
		s.badCredentials(ctx, key, rec)
		return nil, ErrInvalidCredentials
	case err != nil:
		s.fail(ctx, rec, "error", metrics.OutcomeError)
		return nil, fmt.Errorf("load %s credentials: %w", s.realm, err)
	}
	rec.AccountID = &acct.ID

	if !authutil.CheckPassword(a.Password, acct.PasswordHash) {
		s.badCredentials(ctx, key, rec)
		return nil, ErrInvalidCredentials
	}

	if live := acct.DeviceToken; live != nil && *live != "" && a.DeviceToken != "" && a.DeviceToken != *live {
		s.fail(ctx, rec, models.LoginFailureDeviceConflict, metrics.OutcomeDeviceConflict)
		return nil, ErrDeviceConflict
	}

	token, err := s.deps.Issuer.Issue(s.realm, acct.ID.Hex())
	if err != nil {
		s.fail(ctx, rec, "error", metrics.OutcomeError)
		return nil, err
	}
	device, err := tokens.NewDeviceToken(s.deviceBytes)
	if err != nil {
		s.fail(ctx, rec, "error", metrics.OutcomeError)
		return nil, err
	}

	last := models.LastLogin{
		Time:       s.now(),
		IP:         a.IP,
		Browser:    parsed.Browser,
		OS:         parsed.OS,
		Platform:   parsed.Platform,
		DeviceInfo: a.DeviceInfo,
	}
	if err := s.accounts.BindDevice(ctx, acct.ID, device, last); err != nil {
		s.fail(ctx, rec, "error", metrics.OutcomeError)
		return nil, fmt.Errorf("bind %s device: %w", s.realm, err)
	}
	acct.DeviceToken = &device

	if s.deps.Throttle != nil {
		if err := s.deps.Throttle.ClearOnSuccess(ctx, key); err != nil {
			s.deps.Logger.Warn("throttle clear failed", zap.String("realm", s.realm), zap.Error(err))
		}
	}

	rec.Success = true
	s.record(ctx, rec)
	s.deps.Metrics.LoginAttempt(s.realm, metrics.OutcomeSuccess)

	actor := activitylog.UserActor(acct.Name, acct.Role)
	if s.realm == tokens.RealmAdmin {
		actor = activitylog.AdminActor(acct.Name)
	}
	s.deps.Activity.Log(activitylog.WithActor(ctx, actor),
		activitylog.ActionLogin, activitylog.ModuleAuth, acct.Email,
		map[string]any{"realm": s.realm, "ip": a.IP})

	return &Session{Account: *acct, Token: token, DeviceToken: device}, nil
}

func (s *Service) badCredentials(ctx context.Context, key string, rec models.LoginActivity) {
	if s.deps.Throttle != nil {
		if locked, until := s.deps.Throttle.RecordFailure(ctx, key); locked {
			s.deps.Logger.Warn("login locked out",
				zap.String("realm", s.realm),
				zap.String("email", rec.Email),
				zap.Timep("locked_until", until))
		}
	}
	s.fail(ctx, rec, models.LoginFailureInvalidCredentials, metrics.OutcomeInvalid)
}

func (s *Service) fail(ctx context.Context, rec models.LoginActivity, reason, outcome string) {
	rec.Success = false
	rec.FailureReason = reason
	s.record(ctx, rec)
	s.deps.Metrics.LoginAttempt(s.realm, outcome)
}

// record writes LoginActivity detached from the request lifetime; a
// failure is logged and otherwise ignored.
func (s *Service) record(ctx context.Context, rec models.LoginActivity) {
	rec.CreatedAt = s.now().UTC()
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.deps.Recorder.Record(wctx, rec); err != nil {
		s.deps.Logger.Error("failed to record login activity",
			zap.String("realm", s.realm),
			zap.String("email", rec.Email),
			zap.Bool("success", rec.Success),
			zap.Error(err))
	}
}
