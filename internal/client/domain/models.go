// Package domain contains persistence models for billing clients.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Client is the billed party. HourlyRate, when set, is the first tier of the
// billing-rate fallback chain and overrides any per-user default.
type Client struct {
	ID         snowflake.ID     `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID     `gorm:"not null;index" json:"tenant_id"`
	Name       string           `gorm:"type:text;not null" json:"name"`
	Email      string           `gorm:"type:text;not null" json:"email"`
	HourlyRate *decimal.Decimal `gorm:"type:numeric(12,2)" json:"hourly_rate"`
	Notes      string           `gorm:"type:text" json:"notes"`
	ArchivedAt *time.Time       `json:"archived_at"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
