package users

import (
	"strings"
	"time"

	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/database"
)

// Subscription tiers.
const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

// DefaultTier is assigned at registration.
const DefaultTier = TierStarter

// User is a row of the users table.
type User struct {
	ID               string `gorm:"column:user_id;primaryKey;type:uuid"`
	Email            string `gorm:"column:email;uniqueIndex;size:255;not null"`
	HashedPassword   string `gorm:"column:hashed_password;size:255;not null" json:"-"`
	FullName         string `gorm:"column:full_name;size:255"`
	Role             string `gorm:"column:role;size:32;not null"`
	SubscriptionTier string `gorm:"column:subscription_tier;size:32;not null"`
	IsActive         bool   `gorm:"column:is_active;not null"`
	database.Timestamps
}

// TableName pins the table name.
func (User) TableName() string { return "users" }

// SubjectID returns the user id.
func (u *User) SubjectID() string { return u.ID }

// AccessRole returns the stored role.
func (u *User) AccessRole() string { return u.Role }

// Active reports the stored account state.
func (u *User) Active() bool { return u.IsActive }

var _ authz.Principal = (*User)(nil)

// Profile is the public view of a user.
type Profile struct {
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Role             string    `json:"role"`
	SubscriptionTier string    `json:"subscription_tier"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// Profile returns the public view of u.
func (u *User) Profile() *Profile {
	return &Profile{
		UserID:           u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Role:             u.Role,
		SubscriptionTier: u.SubscriptionTier,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims an address so lookups and the
// unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
