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

	clientrepo repository.Repository[clientdomain.Client]
}

func NewService(p ServiceParam) clientdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,

		clientrepo: repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req clientdomain.CreateClientRequest) (clientdomain.Client, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return clientdomain.Client{}, clientdomain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return clientdomain.Client{}, clientdomain.ErrInvalidRequest
	}
	if req.HourlyRate != nil && req.HourlyRate.IsNegative() {
		return clientdomain.Client{}, clientdomain.ErrInvalidRequest
	}

	now := s.clock.Now()
	client := clientdomain.Client{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		Name:       name,
		Email:      email,
		HourlyRate: req.HourlyRate,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.clientrepo.Create(ctx, &client); err != nil {
		return clientdomain.Client{}, err
	}
	return client, nil
}

func (s *Service) List(ctx context.Context, req clientdomain.ListClientRequest) (clientdomain.ListClientResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return clientdomain.ListClientResponse{}, clientdomain.ErrInvalidTenant
	}

	stmt := s.db.WithContext(ctx).
		Where(&clientdomain.Client{TenantID: tenantID}).
		Order("name ASC")
	if search := strings.TrimSpace(req.Search); search != "" {
		stmt = stmt.Where("name LIKE ?", "%"+search+"%")
	}
	if !req.IncludeArchived {
		stmt = stmt.Where("archived_at IS NULL")
	}

	var clients []clientdomain.Client
	if err := stmt.Find(&clients).Error; err != nil {
		return clientdomain.ListClientResponse{}, err
	}
	return clientdomain.ListClientResponse{Clients: clients}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (clientdomain.Client, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return clientdomain.Client{}, clientdomain.ErrInvalidTenant
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return clientdomain.Client{}, clientdomain.ErrInvalidRequest
	}

	item, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: clientID, TenantID: tenantID})
	if err != nil {
		return clientdomain.Client{}, err
	}
	if item == nil {
		return clientdomain.Client{}, clientdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req clientdomain.UpdateClientRequest) (clientdomain.Client, error) {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return clientdomain.Client{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return clientdomain.Client{}, clientdomain.ErrInvalidRequest
		}
		client.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return clientdomain.Client{}, clientdomain.ErrInvalidRequest
		}
		client.Email = email
	}
	if req.HourlyRate != nil {
		if req.HourlyRate.IsNegative() {
			return clientdomain.Client{}, clientdomain.ErrInvalidRequest
		}
		client.HourlyRate = req.HourlyRate
	}
	if req.Notes != nil {
		client.Notes = strings.TrimSpace(*req.Notes)
	}
	client.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&client).Error; err != nil {
		return clientdomain.Client{}, err
	}
	return client, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client.ArchivedAt != nil {
		return nil
	}

	now := s.clock.Now()
	client.ArchivedAt = &now
	client.UpdatedAt = now
	return s.db.WithContext(ctx).Save(&client).Error
}
