// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User statuses
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User represents a staff account on the portal.
//
// LoginID is what the user types to sign in (stored lowercase);
// LoginIDCI is the case/diacritic-folded form used for matching.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"`

	LoginID   string `bson:"login_id" json:"login_id"`
	LoginIDCI string `bson:"login_id_ci" json:"-"`

	PasswordHash string `bson:"password_hash,omitempty" json:"-"` // bcrypt hash, never in JSON

	Role   string `bson:"role" json:"role"`
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{RoleAdmin, RoleStaff}
}
