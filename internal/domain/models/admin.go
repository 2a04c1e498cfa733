// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a back-office operator. Admins live in their own collection and
// authenticate through the admin realm.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	Role        string   `bson:"role" json:"role"` // admin, super_admin
	Avatar      string   `bson:"avatar" json:"avatar"`
	Phone       string   `bson:"phone" json:"phone"`
	Bio         string   `bson:"bio" json:"bio"`
	Permissions []string `bson:"permissions" json:"permissions"`

	DeviceToken *string    `bson:"device_token" json:"-"`
	LastLogin   *LastLogin `bson:"last_login,omitempty" json:"lastLogin,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Admin roles
const (
	AdminRoleAdmin      = "admin"
	AdminRoleSuperAdmin = "super_admin"
)

// DefaultAdminPermissions are granted to admins created by seeding.
var DefaultAdminPermissions = []string{"finance_view", "settings_global"}

// IsValidAdminRole checks if a role is a valid admin role.
func IsValidAdminRole(role string) bool {
	return role == AdminRoleAdmin || role == AdminRoleSuperAdmin
}
