// Package domain contains persistence models for invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status represents invoice lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusPartial   Status = "partial"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusPartial, StatusOverdue, StatusCancelled:
		return true
	default:
		return false
	}
}

// ApprovalStatus gates whether an invoice is finalized.
type ApprovalStatus string

const (
	ApprovalDraft    ApprovalStatus = "draft"
	ApprovalApproved ApprovalStatus = "approved"
)

// Invoice is one bill for one client, derived from a set of unbilled time
// entries. InvoiceNumber is unique per tenant and monotonic within a
// calendar year.
type Invoice struct {
	ID                  snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID            snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_invoices_tenant_number" json:"tenant_id"`
	ClientID            snowflake.ID    `gorm:"not null;index" json:"client_id"`
	InvoiceNumber       string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_tenant_number" json:"invoice_number"`
	Subtotal            decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	TaxRate             decimal.Decimal `gorm:"type:numeric(6,3);not null" json:"tax_rate"`
	TaxAmount           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax_amount"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Status              Status          `gorm:"type:text;not null;default:'draft'" json:"status"`
	ApprovalStatus      ApprovalStatus  `gorm:"type:text;not null;default:'draft'" json:"approval_status"`
	ApprovedBy          *snowflake.ID   `json:"approved_by"`
	ApprovedAt          *time.Time      `json:"approved_at"`
	DueDate             time.Time       `gorm:"not null" json:"due_date"`
	PaymentInstructions string          `gorm:"type:text" json:"payment_instructions"`
	Notes               string          `gorm:"type:text" json:"notes"`
	CreatedBy           snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// LineItem is one invoice row derived from exactly one time entry.
type LineItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	TimeEntryID snowflake.ID    `gorm:"not null;uniqueIndex" json:"time_entry_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Hours       decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"hours"`
	Rate        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "invoice_line_items" }
