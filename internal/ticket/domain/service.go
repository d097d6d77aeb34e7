package domain

import (
	"context"
	"errors"
)

type CreateTicketRequest struct {
	ClientID    string   `json:"client_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

type UpdateTicketRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *Priority `json:"priority"`
	Status      *Status   `json:"status"`
}

type ListTicketRequest struct {
	ClientID string `form:"client_id"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
}

type ListTicketResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest) (Ticket, error)
	List(ctx context.Context, req ListTicketRequest) (ListTicketResponse, error)
	GetByID(ctx context.Context, id string) (Ticket, error)
	Update(ctx context.Context, id string, req UpdateTicketRequest) (Ticket, error)
}

var (
	ErrNotFound       = errors.New("ticket_not_found")
	ErrInvalidRequest = errors.New("invalid_ticket")
	ErrInvalidTenant  = errors.New("invalid_tenant")
)
