package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/tenantctx"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
	"github.com/billablehq/billable/pkg/db/option"
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

	entryrepo  repository.Repository[timeentrydomain.TimeEntry]
	ticketrepo repository.Repository[ticketdomain.Ticket]
}

func NewService(p ServiceParam) timeentrydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("timeentry.service"),
		genID: p.GenID,
		clock: p.Clock,

		entryrepo:  repository.ProvideStore[timeentrydomain.TimeEntry](p.DB),
		ticketrepo: repository.ProvideStore[ticketdomain.Ticket](p.DB),
	}
}

func (s *Service) Log(ctx context.Context, req timeentrydomain.LogTimeRequest) (timeentrydomain.TimeEntry, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidTenant
	}
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidTenant
	}

	if !req.Hours.IsPositive() {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidRequest
	}
	entryDate, err := timeentrydomain.ParseEntryDate(req.EntryDate)
	if err != nil {
		return timeentrydomain.TimeEntry{}, err
	}

	ticketID, err := snowflake.ParseString(strings.TrimSpace(req.TicketID))
	if err != nil {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidRequest
	}
	ticket, err := s.ticketrepo.FindOne(ctx, &ticketdomain.Ticket{ID: ticketID, TenantID: tenantID})
	if err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	if ticket == nil {
		return timeentrydomain.TimeEntry{}, ticketdomain.ErrNotFound
	}

	billable := true
	if req.IsBillable != nil {
		billable = *req.IsBillable
	}

	now := s.clock.Now()
	entry := timeentrydomain.TimeEntry{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		TicketID:       ticketID,
		UserID:         userID,
		Description:    strings.TrimSpace(req.Description),
		Hours:          req.Hours,
		IsBillable:     billable,
		ApprovalStatus: timeentrydomain.ApprovalDraft,
		EntryDate:      entryDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.entryrepo.Create(ctx, &entry); err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, req timeentrydomain.ListTimeEntryRequest) (timeentrydomain.ListTimeEntryResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return timeentrydomain.ListTimeEntryResponse{}, timeentrydomain.ErrInvalidTenant
	}

	filter := &timeentrydomain.TimeEntry{TenantID: tenantID}
	if req.Status != "" {
		status := timeentrydomain.ApprovalStatus(req.Status)
		if !status.Valid() {
			return timeentrydomain.ListTimeEntryResponse{}, timeentrydomain.ErrInvalidRequest
		}
		filter.ApprovalStatus = status
	}
	if req.TicketID != "" {
		ticketID, err := snowflake.ParseString(strings.TrimSpace(req.TicketID))
		if err != nil {
			return timeentrydomain.ListTimeEntryResponse{}, timeentrydomain.ErrInvalidRequest
		}
		filter.TicketID = ticketID
	}
	if req.UserID != "" {
		userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
		if err != nil {
			return timeentrydomain.ListTimeEntryResponse{}, timeentrydomain.ErrInvalidRequest
		}
		filter.UserID = userID
	}

	options := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Default: "entry_date"}),
	}
	if req.From != "" {
		from, err := timeentrydomain.ParseEntryDate(req.From)
		if err != nil {
			return timeentrydomain.ListTimeEntryResponse{}, err
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "entry_date",
			Operator: option.GTE,
			Value:    from,
		}))
	}
	if req.To != "" {
		to, err := timeentrydomain.ParseEntryDate(req.To)
		if err != nil {
			return timeentrydomain.ListTimeEntryResponse{}, err
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "entry_date",
			Operator: option.LTE,
			Value:    to,
		}))
	}

	items, err := s.entryrepo.Find(ctx, filter, options...)
	if err != nil {
		return timeentrydomain.ListTimeEntryResponse{}, err
	}

	entries := make([]timeentrydomain.TimeEntry, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		if item == nil {
			continue
		}
		if req.Unbilled && item.Billed() {
			continue
		}
		entries = append(entries, *item)
		total = total.Add(item.Hours)
	}
	return timeentrydomain.ListTimeEntryResponse{Entries: entries, TotalHours: total}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (timeentrydomain.TimeEntry, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidTenant
	}

	entryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidRequest
	}

	item, err := s.entryrepo.FindOne(ctx, &timeentrydomain.TimeEntry{ID: entryID, TenantID: tenantID})
	if err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	if item == nil {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req timeentrydomain.UpdateTimeEntryRequest) (timeentrydomain.TimeEntry, error) {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	if entry.Billed() {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrEntryBilled
	}
	if entry.ApprovalStatus != timeentrydomain.ApprovalDraft && entry.ApprovalStatus != timeentrydomain.ApprovalRejected {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidTransition
	}

	if req.Description != nil {
		entry.Description = strings.TrimSpace(*req.Description)
	}
	if req.Hours != nil {
		if !req.Hours.IsPositive() {
			return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidRequest
		}
		entry.Hours = *req.Hours
	}
	if req.IsBillable != nil {
		entry.IsBillable = *req.IsBillable
	}
	if req.EntryDate != nil {
		entryDate, err := timeentrydomain.ParseEntryDate(*req.EntryDate)
		if err != nil {
			return timeentrydomain.TimeEntry{}, err
		}
		entry.EntryDate = entryDate
	}
	entry.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	return entry, nil
}

func (s *Service) Submit(ctx context.Context, id string) (timeentrydomain.TimeEntry, error) {
	return s.transition(ctx, id, timeentrydomain.ApprovalSubmitted,
		timeentrydomain.ApprovalDraft, timeentrydomain.ApprovalRejected)
}

func (s *Service) Approve(ctx context.Context, id string) (timeentrydomain.TimeEntry, error) {
	return s.transition(ctx, id, timeentrydomain.ApprovalApproved,
		timeentrydomain.ApprovalSubmitted)
}

func (s *Service) Reject(ctx context.Context, id string) (timeentrydomain.TimeEntry, error) {
	return s.transition(ctx, id, timeentrydomain.ApprovalRejected,
		timeentrydomain.ApprovalSubmitted)
}

func (s *Service) transition(ctx context.Context, id string, to timeentrydomain.ApprovalStatus, from ...timeentrydomain.ApprovalStatus) (timeentrydomain.TimeEntry, error) {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	if entry.Billed() {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrEntryBilled
	}

	allowed := false
	for _, status := range from {
		if entry.ApprovalStatus == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return timeentrydomain.TimeEntry{}, timeentrydomain.ErrInvalidTransition
	}

	entry.ApprovalStatus = to
	entry.UpdatedAt = s.clock.Now()
	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return timeentrydomain.TimeEntry{}, err
	}
	return entry, nil
}
