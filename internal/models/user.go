package models

import (
	"fmt"
	"time"
)

// UserRole identifies the permission level of an account.
type UserRole string

// UserRole values.
const (
	// RoleUser is a regular end-user account.
	RoleUser UserRole = "user"
	// RoleAdmin can inspect and moderate all users and content.
	RoleAdmin UserRole = "admin"
)

// ParseUserRole validates a role string from the request boundary.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleUser, RoleAdmin:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// AuthProvider identifies how an account authenticates.
type AuthProvider string

// AuthProvider values.
const (
	// ProviderEmail authenticates with email and password.
	ProviderEmail AuthProvider = "email"
	// ProviderGoogle authenticates through Google OAuth.
	ProviderGoogle AuthProvider = "google"
)

// SubscriptionPlan identifies a user's subscription tier.
type SubscriptionPlan string

// SubscriptionPlan values.
const (
	// PlanFree is the default tier.
	PlanFree SubscriptionPlan = "free"
	// PlanStandard is the mid tier.
	PlanStandard SubscriptionPlan = "standard"
	// PlanPro is the unbounded tier.
	PlanPro SubscriptionPlan = "pro"
)

// ParseSubscriptionPlan validates a plan string from the request boundary.
func ParseSubscriptionPlan(s string) (SubscriptionPlan, error) {
	switch SubscriptionPlan(s) {
	case PlanFree, PlanStandard, PlanPro:
		return SubscriptionPlan(s), nil
	}
	return "", fmt.Errorf("unknown subscription plan: %q", s)
}

// SubscriptionStatus identifies whether a subscription is active.
type SubscriptionStatus string

// SubscriptionStatus values.
const (
	// SubscriptionActive marks a live subscription.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionInactive marks a lapsed subscription.
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// StartingCredits is the free credit balance granted at registration.
const StartingCredits = 100.0

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Name     string `gorm:"type:text;not null"`             // Display name.
	Avatar   string `gorm:"type:text"`                      // Avatar URL.
	Password string `gorm:"type:text"`                      // Hashed password.

	Role     UserRole     `gorm:"type:varchar(16);not null;default:'user'"`  // Permission level.
	Provider AuthProvider `gorm:"type:varchar(16);not null;default:'email'"` // Auth provider.

	SubscriptionPlan   SubscriptionPlan   `gorm:"type:varchar(16);not null;default:'free'"`   // Subscription tier.
	SubscriptionStatus SubscriptionStatus `gorm:"type:varchar(16);not null;default:'active'"` // Subscription state.

	Credits          float64 `gorm:"type:decimal(20,10);not null;default:100"` // Current credit balance.
	TotalCreditsUsed float64 `gorm:"type:decimal(20,10);not null;default:0"`   // Cumulative debited credits.

	CreatedAt time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	LastLogin *time.Time // Last successful login, nil before first login.
}
