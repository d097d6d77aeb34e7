// Package domain contains auth session models and contracts.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
)

// Session is an opaque server-side session.
type Session struct {
	Token     string       `gorm:"primaryKey;type:text" json:"-"`
	ProfileID snowflake.ID `gorm:"not null;index" json:"profile_id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Identity struct {
	Profile profiledomain.Profile
	Session Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (Identity, error)
	Authenticate(ctx context.Context, token string) (Identity, error)
	Logout(ctx context.Context, token string) error
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
)
