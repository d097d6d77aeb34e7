package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/clock"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/internal/tenantctx"
	"github.com/billablehq/billable/pkg/db"
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

	profilerepo repository.Repository[profiledomain.Profile]
}

func NewService(p ServiceParam) profiledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		genID: p.GenID,
		clock: p.Clock,

		profilerepo: repository.ProvideStore[profiledomain.Profile](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req profiledomain.CreateProfileRequest) (profiledomain.Profile, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)
	if email == "" || displayName == "" || len(req.Password) < 8 {
		return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
	}
	role := req.Role
	if role == "" {
		role = profiledomain.RoleMember
	}
	switch role {
	case profiledomain.RoleOwner, profiledomain.RoleAdmin, profiledomain.RoleMember:
	default:
		return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
	}
	if req.DefaultHourlyRate != nil && req.DefaultHourlyRate.IsNegative() {
		return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return profiledomain.Profile{}, err
	}

	now := s.clock.Now()
	profile := profiledomain.Profile{
		ID:                s.genID.Generate(),
		TenantID:          tenantID,
		Email:             email,
		DisplayName:       displayName,
		PasswordHash:      string(hash),
		Role:              role,
		DefaultHourlyRate: req.DefaultHourlyRate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.profilerepo.Create(ctx, &profile); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
		}
		return profiledomain.Profile{}, err
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context) (profiledomain.ListProfileResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return profiledomain.ListProfileResponse{}, profiledomain.ErrInvalidRequest
	}

	var profiles []profiledomain.Profile
	err := s.db.WithContext(ctx).
		Where(&profiledomain.Profile{TenantID: tenantID}).
		Order("display_name ASC").
		Find(&profiles).Error
	if err != nil {
		return profiledomain.ListProfileResponse{}, err
	}
	return profiledomain.ListProfileResponse{Profiles: profiles}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (profiledomain.Profile, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
	}

	profileID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return profiledomain.Profile{}, profiledomain.ErrInvalidRequest
	}

	profile, err := s.profilerepo.FindOne(ctx, &profiledomain.Profile{ID: profileID, TenantID: tenantID})
	if err != nil {
		return profiledomain.Profile{}, err
	}
	if profile == nil {
		return profiledomain.Profile{}, profiledomain.ErrNotFound
	}
	return *profile, nil
}
