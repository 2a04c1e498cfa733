// internal/domain/models/user.go
package models

// Terminology: Account Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies an account record
//   - Email: The address an account logs in with (stored lowercase, unique per collection)

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a platform account (audience, organizer, artist, ...).
//
// Session fields:
//   - DeviceToken: the single live device binding; nil when no session is bound
//   - LastLogin: snapshot of the most recent successful login
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)

	// Profile
	Avatar      string     `bson:"avatar" json:"avatar"`
	Bio         string     `bson:"bio" json:"bio"`
	Phone       string     `bson:"phone" json:"phone"`
	City        string     `bson:"city" json:"city"`
	State       string     `bson:"state" json:"state"`
	Interests   []string   `bson:"interests" json:"interests"`
	Location    string     `bson:"location" json:"location"`
	Gender      string     `bson:"gender" json:"gender"` // male, female, other, or empty
	DateOfBirth *time.Time `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	Social      Social     `bson:"social" json:"social"`

	Role     string `bson:"role" json:"role"`
	RoleType string `bson:"role_type" json:"role_type"`
	Status   string `bson:"status" json:"status"` // active, blocked, inactive

	DeviceToken *string `bson:"device_token" json:"-"`

	OrganizerProfile *OrganizerProfile `bson:"organizer_profile,omitempty" json:"organizerProfile,omitempty"`
	LastLogin        *LastLogin        `bson:"last_login,omitempty" json:"lastLogin,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Social holds a user's public links.
type Social struct {
	Instagram string `bson:"instagram" json:"instagram"`
	Facebook  string `bson:"facebook" json:"facebook"`
	Twitter   string `bson:"twitter" json:"twitter"`
	LinkedIn  string `bson:"linkedin" json:"linkedin"`
	Website   string `bson:"website" json:"website"`
}

// OrganizerProfile is only set on organizer accounts.
type OrganizerProfile struct {
	CompanyName        string `bson:"company_name,omitempty" json:"companyName,omitempty"`
	Website            string `bson:"website,omitempty" json:"website,omitempty"`
	VerificationStatus string `bson:"verification_status" json:"verificationStatus"` // pending, verified, rejected
	TaxID              string `bson:"tax_id,omitempty" json:"taxId,omitempty"`
}

// LastLogin is the snapshot written together with the device token on login.
type LastLogin struct {
	Time       time.Time      `bson:"time" json:"time"`
	IP         string         `bson:"ip" json:"ip"`
	Browser    string         `bson:"browser" json:"browser"`
	OS         string         `bson:"os" json:"os"`
	Platform   string         `bson:"platform" json:"platform"`
	DeviceInfo map[string]any `bson:"device_info,omitempty" json:"deviceInfo,omitempty"`
}

// User roles
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RoleArtist    = "artist"
	RoleSponsor   = "sponsor"
	RoleAudience  = "audience"
	RoleSeller    = "seller"
	RoleStaff     = "staff"
)

// User statuses
const (
	StatusActive   = "active"
	StatusBlocked  = "blocked"
	StatusInactive = "inactive"
)

// Organizer verification states
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{
		RoleUser,
		RoleAdmin,
		RoleOrganizer,
		RoleArtist,
		RoleSponsor,
		RoleAudience,
		RoleSeller,
		RoleStaff,
	}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// RoleTypeFor maps a role to its upper-case role_type, defaulting to AUDIENCE.
func RoleTypeFor(role string) string {
	switch role {
	case RoleAdmin, RoleOrganizer, RoleArtist, RoleSponsor, RoleSeller, RoleStaff:
		return strings.ToUpper(role)
	default:
		return "AUDIENCE"
	}
}

// IsValidGender accepts the empty string (not specified).
func IsValidGender(g string) bool {
	switch g {
	case "", "male", "female", "other":
		return true
	}
	return false
}
