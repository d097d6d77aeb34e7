package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/clock"
	notificationdomain "github.com/billablehq/billable/internal/notification/domain"
	"github.com/billablehq/billable/internal/providers/email"
	"github.com/billablehq/billable/internal/tenantctx"
	"github.com/billablehq/billable/pkg/db/option"
	"github.com/billablehq/billable/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Emails email.Provider
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	emails email.Provider

	logrepo repository.Repository[notificationdomain.NotificationLog]
}

func NewService(p ServiceParam) notificationdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("notification.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		emails: p.Emails,

		logrepo: repository.ProvideStore[notificationdomain.NotificationLog](p.DB),
	}
}

func (s *Service) Enqueue(ctx context.Context, req notificationdomain.EnqueueRequest) (notificationdomain.NotificationLog, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return notificationdomain.NotificationLog{}, notificationdomain.ErrInvalidTenant
	}

	recipient := strings.ToLower(strings.TrimSpace(req.RecipientEmail))
	if recipient == "" || req.Type == "" {
		return notificationdomain.NotificationLog{}, notificationdomain.ErrInvalidRequest
	}

	entry := notificationdomain.NotificationLog{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		RecipientEmail: recipient,
		Type:           req.Type,
		Subject:        req.Subject,
		Body:           req.Body,
		Status:         notificationdomain.StatusPending,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.logrepo.Create(ctx, &entry); err != nil {
		return notificationdomain.NotificationLog{}, err
	}

	if err := s.emails.Send(ctx, []string{recipient}, req.Subject, req.Body); err != nil {
		entry.Status = notificationdomain.StatusFailed
		entry.Error = err.Error()
		s.log.Warn("notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("type", req.Type),
			zap.Error(err),
		)
	} else {
		now := s.clock.Now()
		entry.Status = notificationdomain.StatusSent
		entry.SentAt = &now
	}

	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		s.log.Warn("failed to record notification outcome", zap.Error(err))
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context) (notificationdomain.ListNotificationResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return notificationdomain.ListNotificationResponse{}, notificationdomain.ErrInvalidTenant
	}

	items, err := s.logrepo.Find(ctx,
		&notificationdomain.NotificationLog{TenantID: tenantID},
		option.WithSortBy(option.QuerySortBy{Default: "created_at", Desc: true}),
	)
	if err != nil {
		return notificationdomain.ListNotificationResponse{}, err
	}

	notifications := make([]notificationdomain.NotificationLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}
	return notificationdomain.ListNotificationResponse{Notifications: notifications}, nil
}
