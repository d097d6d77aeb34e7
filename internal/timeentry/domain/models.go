// Package domain contains persistence models for time entries.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalDraft     ApprovalStatus = "draft"
	ApprovalSubmitted ApprovalStatus = "submitted"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
)

func (a ApprovalStatus) Valid() bool {
	switch a {
	case ApprovalDraft, ApprovalSubmitted, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// TimeEntry is a record of hours worked against a ticket. InvoiceID is nil
// while the entry is unbilled; once set the entry is immutable and must never
// be selected by a later invoicing run.
type TimeEntry struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	TicketID       snowflake.ID    `gorm:"not null;index" json:"ticket_id"`
	UserID         snowflake.ID    `gorm:"not null;index" json:"user_id"`
	Description    string          `gorm:"type:text" json:"description"`
	Hours          decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"hours"`
	IsBillable     bool            `gorm:"not null" json:"is_billable"`
	ApprovalStatus ApprovalStatus  `gorm:"type:text;not null;default:'draft'" json:"approval_status"`
	EntryDate      time.Time       `gorm:"type:date;not null;index" json:"entry_date"`
	InvoiceID      *snowflake.ID   `gorm:"index" json:"invoice_id"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TimeEntry) TableName() string { return "time_entries" }

// Billed reports whether the entry has been attached to an invoice.
func (e TimeEntry) Billed() bool { return e.InvoiceID != nil }
