package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authdomain "github.com/billablehq/billable/internal/auth/domain"
	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/config"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	ttl   time.Duration

	sessionrepo repository.Repository[authdomain.Session]
	profilerepo repository.Repository[profiledomain.Profile]
}

func NewService(p ServiceParam) authdomain.Service {
	ttl := time.Duration(p.Cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		clock: p.Clock,
		ttl:   ttl,

		sessionrepo: repository.ProvideStore[authdomain.Session](p.DB),
		profilerepo: repository.ProvideStore[profiledomain.Profile](p.DB),
	}
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return authdomain.Identity{}, authdomain.ErrInvalidCredentials
	}

	profile, err := s.profilerepo.FindOne(ctx, &profiledomain.Profile{Email: email})
	if err != nil {
		return authdomain.Identity{}, err
	}
	if profile == nil {
		return authdomain.Identity{}, authdomain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return authdomain.Identity{}, authdomain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	session := authdomain.Session{
		Token:     uuid.NewString(),
		ProfileID: profile.ID,
		TenantID:  profile.TenantID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessionrepo.Create(ctx, &session); err != nil {
		return authdomain.Identity{}, err
	}

	s.log.Info("login", zap.String("email", email), zap.Int64("tenant_id", profile.TenantID.Int64()))
	return authdomain.Identity{Profile: *profile, Session: session}, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (authdomain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return authdomain.Identity{}, authdomain.ErrInvalidSession
	}

	session, err := s.sessionrepo.FindOne(ctx, &authdomain.Session{Token: token})
	if err != nil {
		return authdomain.Identity{}, err
	}
	if session == nil {
		return authdomain.Identity{}, authdomain.ErrInvalidSession
	}
	if s.clock.Now().After(session.ExpiresAt) {
		if err := s.sessionrepo.Delete(ctx, session.Token); err != nil {
			s.log.Warn("expired session cleanup failed", zap.Error(err))
		}
		return authdomain.Identity{}, authdomain.ErrSessionExpired
	}

	profile, err := s.profilerepo.FindOne(ctx, &profiledomain.Profile{ID: session.ProfileID})
	if err != nil {
		return authdomain.Identity{}, err
	}
	if profile == nil {
		return authdomain.Identity{}, authdomain.ErrInvalidSession
	}

	return authdomain.Identity{Profile: *profile, Session: *session}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessionrepo.Delete(ctx, token)
}
