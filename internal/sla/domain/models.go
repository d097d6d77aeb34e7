// Package domain contains SLA rules and the pure status calculator.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
)

// SLARule holds response/resolution thresholds in hours for one ticket
// priority. A NULL client_id makes the rule the tenant-wide default; a
// client-specific rule overrides it.
type SLARule struct {
	ID                  snowflake.ID          `gorm:"primaryKey" json:"id"`
	TenantID            snowflake.ID          `gorm:"not null;index" json:"tenant_id"`
	ClientID            *snowflake.ID         `gorm:"index" json:"client_id"`
	Priority            ticketdomain.Priority `gorm:"type:text;not null" json:"priority"`
	ResponseTimeHours   *decimal.Decimal      `gorm:"type:decimal(10,2)" json:"response_time_hours"`
	ResolutionTimeHours *decimal.Decimal      `gorm:"type:decimal(10,2)" json:"resolution_time_hours"`
	CreatedAt           time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SLARule) TableName() string { return "sla_rules" }
