// internal/domain/models/loginactivity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginActivity is a write-once snapshot of one login attempt.
// AccountID is nil when the email did not match any account.
type LoginActivity struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Realm         string              `bson:"realm" json:"realm"` // user, admin
	AccountID     *primitive.ObjectID `bson:"account_id" json:"accountId"`
	Email         string              `bson:"email" json:"email"`
	IP            string              `bson:"ip" json:"ip"`
	UserAgent     string              `bson:"user_agent" json:"userAgent"`
	ParsedUA      ParsedUserAgent     `bson:"parsed_ua" json:"parsedUA"`
	DeviceInfo    map[string]any      `bson:"device_info,omitempty" json:"deviceInfo,omitempty"`
	Success       bool                `bson:"success" json:"success"`
	FailureReason string              `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
}

// ParsedUserAgent holds the fields extracted from a User-Agent header.
type ParsedUserAgent struct {
	Browser        string `bson:"browser" json:"browser"`
	BrowserVersion string `bson:"browser_version" json:"browserVersion"`
	OS             string `bson:"os" json:"os"`
	Platform       string `bson:"platform" json:"platform"`
	DeviceType     string `bson:"device_type" json:"deviceType"` // desktop, mobile, bot
}

// Login failure reasons
const (
	LoginFailureInvalidCredentials = "invalid_credentials"
	LoginFailureDeviceConflict     = "device_conflict"
	LoginFailureLockedOut          = "locked_out"
)
