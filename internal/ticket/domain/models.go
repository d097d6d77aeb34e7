// Package domain contains persistence models for support tickets.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

// Ticket links work to a client. Time entries reach their client through the
// ticket's client_id.
type Ticket struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	ClientID        snowflake.ID `gorm:"not null;index" json:"client_id"`
	Title           string       `gorm:"type:text;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	Priority        Priority     `gorm:"type:text;not null;default:'medium'" json:"priority"`
	Status          Status       `gorm:"type:text;not null;default:'open'" json:"status"`
	CreatedBy       snowflake.ID `gorm:"not null" json:"created_by"`
	FirstResponseAt *time.Time   `json:"first_response_at"`
	ResolvedAt      *time.Time   `json:"resolved_at"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Ticket) TableName() string { return "tickets" }
