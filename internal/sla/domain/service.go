package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
)

type CreateRuleRequest struct {
	ClientID            string                `json:"client_id"`
	Priority            ticketdomain.Priority `json:"priority" binding:"required"`
	ResponseTimeHours   *decimal.Decimal      `json:"response_time_hours"`
	ResolutionTimeHours *decimal.Decimal      `json:"resolution_time_hours"`
}

type UpdateRuleRequest struct {
	ResponseTimeHours   *decimal.Decimal `json:"response_time_hours"`
	ResolutionTimeHours *decimal.Decimal `json:"resolution_time_hours"`
}

type ListRuleResponse struct {
	Rules []SLARule `json:"rules"`
}

// ReportResponse is the tenant-wide SLA report over open and in-progress
// tickets. ComplianceRate counts tickets whose overall status is compliant
// among tickets with at least one applicable threshold.
type ReportResponse struct {
	Tickets        []TicketStatus  `json:"tickets"`
	TotalCount     int             `json:"total_count"`
	MeasuredCount  int             `json:"measured_count"`
	CompliantCount int             `json:"compliant_count"`
	ComplianceRate decimal.Decimal `json:"compliance_rate"`
}

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (SLARule, error)
	ListRules(ctx context.Context) (ListRuleResponse, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (SLARule, error)
	DeleteRule(ctx context.Context, id string) error
	Report(ctx context.Context) (ReportResponse, error)
}

var (
	ErrNotFound       = errors.New("sla_rule_not_found")
	ErrInvalidRequest = errors.New("invalid_sla_rule")
	ErrInvalidTenant  = errors.New("invalid_tenant")
)
