package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateClientRequest struct {
	Name       string           `json:"name" binding:"required"`
	Email      string           `json:"email" binding:"required,email"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	Notes      string           `json:"notes"`
}

type UpdateClientRequest struct {
	Name       *string          `json:"name"`
	Email      *string          `json:"email"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	Notes      *string          `json:"notes"`
}

type ListClientRequest struct {
	Search          string `form:"search"`
	IncludeArchived bool   `form:"include_archived"`
}

type ListClientResponse struct {
	Clients []Client `json:"clients"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	GetByID(ctx context.Context, id string) (Client, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (Client, error)
	Archive(ctx context.Context, id string) error
}

var (
	ErrNotFound       = errors.New("client_not_found")
	ErrInvalidRequest = errors.New("invalid_client")
	ErrInvalidTenant  = errors.New("invalid_tenant")
)
