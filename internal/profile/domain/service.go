package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type CreateProfileRequest struct {
	Email             string           `json:"email" binding:"required,email"`
	DisplayName       string           `json:"display_name" binding:"required"`
	Password          string           `json:"password" binding:"required,min=8"`
	Role              Role             `json:"role"`
	DefaultHourlyRate *decimal.Decimal `json:"default_hourly_rate"`
}

type ListProfileResponse struct {
	Profiles []Profile `json:"profiles"`
}

type Service interface {
	Create(ctx context.Context, req CreateProfileRequest) (Profile, error)
	List(ctx context.Context) (ListProfileResponse, error)
	GetByID(ctx context.Context, id string) (Profile, error)
}
