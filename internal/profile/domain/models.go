// Package domain contains persistence models for user profiles.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Profile is a user inside a tenant. DefaultHourlyRate is the second tier of
// the billing-rate fallback chain.
type Profile struct {
	ID                snowflake.ID     `gorm:"primaryKey" json:"id"`
	TenantID          snowflake.ID     `gorm:"not null;index" json:"tenant_id"`
	Email             string           `gorm:"type:text;not null;uniqueIndex:ux_profiles_email" json:"email"`
	DisplayName       string           `gorm:"type:text;not null" json:"display_name"`
	PasswordHash      string           `gorm:"type:text;not null" json:"-"`
	Role              Role             `gorm:"type:text;not null;default:'member'" json:"role"`
	DefaultHourlyRate *decimal.Decimal `gorm:"type:numeric(12,2)" json:"default_hourly_rate"`
	CreatedAt         time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

var (
	ErrNotFound       = errors.New("profile_not_found")
	ErrInvalidRequest = errors.New("invalid_profile")
)
