package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/billablehq/billable/internal/client/domain"
	"github.com/billablehq/billable/internal/clock"
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

	ticketrepo repository.Repository[ticketdomain.Ticket]
	clientrepo repository.Repository[clientdomain.Client]
}

func NewService(p ServiceParam) ticketdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ticket.service"),
		genID: p.GenID,
		clock: p.Clock,

		ticketrepo: repository.ProvideStore[ticketdomain.Ticket](p.DB),
		clientrepo: repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req ticketdomain.CreateTicketRequest) (ticketdomain.Ticket, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return ticketdomain.Ticket{}, ticketdomain.ErrInvalidTenant
	}
	userID, _ := tenantctx.UserIDFromContext(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil {
		return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
	}
	client, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: clientID, TenantID: tenantID})
	if err != nil {
		return ticketdomain.Ticket{}, err
	}
	if client == nil {
		return ticketdomain.Ticket{}, clientdomain.ErrNotFound
	}

	priority := req.Priority
	if priority == "" {
		priority = ticketdomain.PriorityMedium
	}
	if !priority.Valid() {
		return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
	}

	now := s.clock.Now()
	ticket := ticketdomain.Ticket{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		ClientID:    clientID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		Status:      ticketdomain.StatusOpen,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ticketrepo.Create(ctx, &ticket); err != nil {
		return ticketdomain.Ticket{}, err
	}
	return ticket, nil
}

func (s *Service) List(ctx context.Context, req ticketdomain.ListTicketRequest) (ticketdomain.ListTicketResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return ticketdomain.ListTicketResponse{}, ticketdomain.ErrInvalidTenant
	}

	filter := &ticketdomain.Ticket{TenantID: tenantID}
	if req.Status != "" {
		status := ticketdomain.Status(req.Status)
		if !status.Valid() {
			return ticketdomain.ListTicketResponse{}, ticketdomain.ErrInvalidRequest
		}
		filter.Status = status
	}
	if req.Priority != "" {
		priority := ticketdomain.Priority(req.Priority)
		if !priority.Valid() {
			return ticketdomain.ListTicketResponse{}, ticketdomain.ErrInvalidRequest
		}
		filter.Priority = priority
	}
	if req.ClientID != "" {
		clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
		if err != nil {
			return ticketdomain.ListTicketResponse{}, ticketdomain.ErrInvalidRequest
		}
		filter.ClientID = clientID
	}

	items, err := s.ticketrepo.Find(ctx, filter)
	if err != nil {
		return ticketdomain.ListTicketResponse{}, err
	}

	tickets := make([]ticketdomain.Ticket, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tickets = append(tickets, *item)
	}
	return ticketdomain.ListTicketResponse{Tickets: tickets}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (ticketdomain.Ticket, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return ticketdomain.Ticket{}, ticketdomain.ErrInvalidTenant
	}

	ticketID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
	}

	item, err := s.ticketrepo.FindOne(ctx, &ticketdomain.Ticket{ID: ticketID, TenantID: tenantID})
	if err != nil {
		return ticketdomain.Ticket{}, err
	}
	if item == nil {
		return ticketdomain.Ticket{}, ticketdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req ticketdomain.UpdateTicketRequest) (ticketdomain.Ticket, error) {
	ticket, err := s.GetByID(ctx, id)
	if err != nil {
		return ticketdomain.Ticket{}, err
	}

	now := s.clock.Now()
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
		}
		ticket.Title = title
	}
	if req.Description != nil {
		ticket.Description = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
		}
		ticket.Priority = *req.Priority
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return ticketdomain.Ticket{}, ticketdomain.ErrInvalidRequest
		}
		// Leaving "open" for the first time counts as the first response.
		if ticket.Status == ticketdomain.StatusOpen && *req.Status != ticketdomain.StatusOpen && ticket.FirstResponseAt == nil {
			ticket.FirstResponseAt = &now
		}
		if (*req.Status == ticketdomain.StatusResolved || *req.Status == ticketdomain.StatusClosed) && ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		ticket.Status = *req.Status
	}
	ticket.UpdatedAt = now

	if err := s.db.WithContext(ctx).Save(&ticket).Error; err != nil {
		return ticketdomain.Ticket{}, err
	}
	return ticket, nil
}
