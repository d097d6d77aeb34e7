package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// GenerateRequest describes one invoicing run. The tenant and caller are
// taken from the request context, never from the body.
type GenerateRequest struct {
	ClientID           string `json:"client_id"`
	RangeStart         string `json:"date_range_start" binding:"required"` // YYYY-MM-DD, inclusive
	RangeEnd           string `json:"date_range_end" binding:"required"`   // YYYY-MM-DD, inclusive
	IncludeNonBillable bool   `json:"include_non_billable"`
	AutoApprove        bool   `json:"auto_approve"`
	SendNotification   bool   `json:"send_notification"`
}

// CreatedInvoice is one invoice produced by a generation run.
type CreatedInvoice struct {
	Invoice    Invoice    `json:"invoice"`
	ClientName string     `json:"client_name"`
	LineItems  []LineItem `json:"line_items"`
	EntryCount int        `json:"entry_count"`
}

// SkippedClient reports a client group that failed without aborting the run.
type SkippedClient struct {
	ClientID snowflake.ID `json:"client_id"`
	Reason   string       `json:"reason"`
}

type GenerateSummary struct {
	InvoiceCount int             `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ClientCount  int             `json:"client_count"`
}

type GenerateResponse struct {
	Invoices []CreatedInvoice `json:"invoices"`
	Skipped  []SkippedClient  `json:"skipped,omitempty"`
	Summary  GenerateSummary  `json:"summary"`
	Message  string           `json:"message,omitempty"`
}

type ListInvoiceRequest struct {
	Status      string `form:"status"`
	ClientID    string `form:"client_id"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

type ListInvoiceResponse struct {
	Invoices []Invoice `json:"invoices"`
}

type InvoiceDetail struct {
	Invoice   Invoice    `json:"invoice"`
	LineItems []LineItem `json:"line_items"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceDetail, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (Invoice, error)
}

var (
	ErrNotFound       = errors.New("invoice_not_found")
	ErrInvalidRequest = errors.New("invalid_invoice_request")
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidRange   = errors.New("invalid_date_range")
	ErrInvalidStatus  = errors.New("invalid_invoice_status")
)

// DateLayout is the wire format for generation date ranges.
const DateLayout = "2006-01-02"

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidRange
	}
	return t.UTC(), nil
}
