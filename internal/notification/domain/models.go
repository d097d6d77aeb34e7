// Package domain contains notification log models and contracts.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

const (
	TypeInvoiceCreated = "invoice_created"
)

// NotificationLog records every outbound notification and its delivery
// outcome. Delivery failures are recorded here, never propagated to the
// caller.
type NotificationLog struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID   `gorm:"not null;index" json:"tenant_id"`
	RecipientEmail string         `gorm:"type:text;not null" json:"recipient_email"`
	Type           string         `gorm:"type:text;not null" json:"type"`
	Subject        string         `gorm:"type:text;not null" json:"subject"`
	Body           string         `gorm:"type:text" json:"body"`
	Status         DeliveryStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	Error          string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	SentAt         *time.Time     `json:"sent_at"`
}

// TableName sets the database table name.
func (NotificationLog) TableName() string { return "notification_logs" }

type EnqueueRequest struct {
	RecipientEmail string
	Type           string
	Subject        string
	Body           string
}

type ListNotificationResponse struct {
	Notifications []NotificationLog `json:"notifications"`
}

type Service interface {
	// Enqueue records and attempts delivery. It only fails on storage errors;
	// delivery failures are recorded on the log row.
	Enqueue(ctx context.Context, req EnqueueRequest) (NotificationLog, error)
	List(ctx context.Context) (ListNotificationResponse, error)
}

var (
	ErrInvalidRequest = errors.New("invalid_notification")
	ErrInvalidTenant  = errors.New("invalid_tenant")
)
