package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/billablehq/billable/internal/client/domain"
	"github.com/billablehq/billable/internal/clock"
	sladomain "github.com/billablehq/billable/internal/sla/domain"
	"github.com/billablehq/billable/internal/tenantctx"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
	"github.com/billablehq/billable/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	rulerepo   repository.Repository[sladomain.SLARule]
	clientrepo repository.Repository[clientdomain.Client]
}

func NewService(p ServiceParam) sladomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sla.service"),
		genID: p.GenID,
		clock: p.Clock,

		rulerepo:   repository.ProvideStore[sladomain.SLARule](p.DB),
		clientrepo: repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func validThreshold(v *decimal.Decimal) bool {
	return v == nil || v.IsPositive()
}

func (s *Service) CreateRule(ctx context.Context, req sladomain.CreateRuleRequest) (sladomain.SLARule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return sladomain.SLARule{}, sladomain.ErrInvalidTenant
	}

	if !req.Priority.Valid() {
		return sladomain.SLARule{}, sladomain.ErrInvalidRequest
	}
	if req.ResponseTimeHours == nil && req.ResolutionTimeHours == nil {
		return sladomain.SLARule{}, sladomain.ErrInvalidRequest
	}
	if !validThreshold(req.ResponseTimeHours) || !validThreshold(req.ResolutionTimeHours) {
		return sladomain.SLARule{}, sladomain.ErrInvalidRequest
	}

	var clientID *snowflake.ID
	if trimmed := strings.TrimSpace(req.ClientID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return sladomain.SLARule{}, sladomain.ErrInvalidRequest
		}
		client, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: parsed, TenantID: tenantID})
		if err != nil {
			return sladomain.SLARule{}, err
		}
		if client == nil {
			return sladomain.SLARule{}, clientdomain.ErrNotFound
		}
		clientID = &parsed
	}

	now := s.clock.Now()
	rule := sladomain.SLARule{
		ID:                  s.genID.Generate(),
		TenantID:            tenantID,
		ClientID:            clientID,
		Priority:            req.Priority,
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.rulerepo.Create(ctx, &rule); err != nil {
		return sladomain.SLARule{}, err
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context) (sladomain.ListRuleResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return sladomain.ListRuleResponse{}, sladomain.ErrInvalidTenant
	}

	var rules []sladomain.SLARule
	err := s.db.WithContext(ctx).
		Where(&sladomain.SLARule{TenantID: tenantID}).
		Order("priority ASC, client_id ASC").
		Find(&rules).Error
	if err != nil {
		return sladomain.ListRuleResponse{}, err
	}
	return sladomain.ListRuleResponse{Rules: rules}, nil
}

func (s *Service) UpdateRule(ctx context.Context, id string, req sladomain.UpdateRuleRequest) (sladomain.SLARule, error) {
	rule, err := s.getRule(ctx, id)
	if err != nil {
		return sladomain.SLARule{}, err
	}

	if !validThreshold(req.ResponseTimeHours) || !validThreshold(req.ResolutionTimeHours) {
		return sladomain.SLARule{}, sladomain.ErrInvalidRequest
	}
	if req.ResponseTimeHours != nil {
		rule.ResponseTimeHours = req.ResponseTimeHours
	}
	if req.ResolutionTimeHours != nil {
		rule.ResolutionTimeHours = req.ResolutionTimeHours
	}
	if rule.ResponseTimeHours == nil && rule.ResolutionTimeHours == nil {
		return sladomain.SLARule{}, sladomain.ErrInvalidRequest
	}
	rule.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&rule).Error; err != nil {
		return sladomain.SLARule{}, err
	}
	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.getRule(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&rule).Error
}

func (s *Service) getRule(ctx context.Context, id string) (sladomain.SLARule, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return sladomain.SLARule{}, sladomain.ErrInvalidTenant
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return sladomain.SLARule{}, sladomain.ErrInvalidRequest
	}

	rule, err := s.rulerepo.FindOne(ctx, &sladomain.SLARule{ID: ruleID, TenantID: tenantID})
	if err != nil {
		return sladomain.SLARule{}, err
	}
	if rule == nil {
		return sladomain.SLARule{}, sladomain.ErrNotFound
	}
	return *rule, nil
}

// Report evaluates every open and in-progress ticket against the tenant's
// rules. Pure read; nothing is persisted.
func (s *Service) Report(ctx context.Context) (sladomain.ReportResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return sladomain.ReportResponse{}, sladomain.ErrInvalidTenant
	}

	var rules []sladomain.SLARule
	err := s.db.WithContext(ctx).
		Where(&sladomain.SLARule{TenantID: tenantID}).
		Find(&rules).Error
	if err != nil {
		return sladomain.ReportResponse{}, err
	}

	var tickets []ticketdomain.Ticket
	err = s.db.WithContext(ctx).
		Where(&ticketdomain.Ticket{TenantID: tenantID}).
		Where("status IN ?", []ticketdomain.Status{ticketdomain.StatusOpen, ticketdomain.StatusInProgress}).
		Order("created_at ASC").
		Find(&tickets).Error
	if err != nil {
		return sladomain.ReportResponse{}, err
	}

	now := s.clock.Now()
	resp := sladomain.ReportResponse{
		Tickets:        make([]sladomain.TicketStatus, 0, len(tickets)),
		TotalCount:     len(tickets),
		ComplianceRate: decimal.Zero,
	}
	for _, ticket := range tickets {
		rule := sladomain.MatchRule(rules, ticket.ClientID.Int64(), ticket.Priority)
		status := sladomain.Evaluate(ticket, rule, now)
		resp.Tickets = append(resp.Tickets, status)

		if status.Overall == sladomain.ClassNotApplicable {
			continue
		}
		resp.MeasuredCount++
		if status.Overall == sladomain.ClassCompliant {
			resp.CompliantCount++
		}
	}
	if resp.MeasuredCount > 0 {
		resp.ComplianceRate = decimal.NewFromInt(int64(resp.CompliantCount)).
			Div(decimal.NewFromInt(int64(resp.MeasuredCount))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return resp, nil
}
