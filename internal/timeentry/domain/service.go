package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type LogTimeRequest struct {
	TicketID    string          `json:"ticket_id" binding:"required"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours" binding:"required"`
	IsBillable  *bool           `json:"is_billable"`
	EntryDate   string          `json:"entry_date" binding:"required"` // YYYY-MM-DD
}

type UpdateTimeEntryRequest struct {
	Description *string          `json:"description"`
	Hours       *decimal.Decimal `json:"hours"`
	IsBillable  *bool            `json:"is_billable"`
	EntryDate   *string          `json:"entry_date"`
}

type ListTimeEntryRequest struct {
	TicketID  string `form:"ticket_id"`
	UserID    string `form:"user_id"`
	From      string `form:"from"`
	To        string `form:"to"`
	Unbilled  bool   `form:"unbilled"`
	Status    string `form:"status"`
}

type ListTimeEntryResponse struct {
	Entries    []TimeEntry     `json:"entries"`
	TotalHours decimal.Decimal `json:"total_hours"`
}

type Service interface {
	Log(ctx context.Context, req LogTimeRequest) (TimeEntry, error)
	List(ctx context.Context, req ListTimeEntryRequest) (ListTimeEntryResponse, error)
	GetByID(ctx context.Context, id string) (TimeEntry, error)
	Update(ctx context.Context, id string, req UpdateTimeEntryRequest) (TimeEntry, error)
	Submit(ctx context.Context, id string) (TimeEntry, error)
	Approve(ctx context.Context, id string) (TimeEntry, error)
	Reject(ctx context.Context, id string) (TimeEntry, error)
}

var (
	ErrNotFound          = errors.New("time_entry_not_found")
	ErrInvalidRequest    = errors.New("invalid_time_entry")
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrEntryBilled       = errors.New("time_entry_billed")
	ErrInvalidTransition = errors.New("invalid_approval_transition")
)

// EntryDateLayout is the wire format for entry dates.
const EntryDateLayout = "2006-01-02"

func ParseEntryDate(raw string) (time.Time, error) {
	t, err := time.Parse(EntryDateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidRequest
	}
	return t.UTC(), nil
}
