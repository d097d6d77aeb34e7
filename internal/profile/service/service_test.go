package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/clock"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/internal/tenantctx"
)

type testEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  profiledomain.Service
	ctx  context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&profiledomain.Profile{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))

	tenantID := node.Generate()
	userID := node.Generate()
	ctx := tenantctx.WithUserID(tenantctx.WithTenantID(context.Background(), tenantID.Int64()), userID.Int64())

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: fake,
	})

	return &testEnv{db: db, node: node, svc: svc, ctx: ctx}
}

func TestCreateProfile(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.svc.Create(env.ctx, profiledomain.CreateProfileRequest{
		Email:       "Worker@Example.com",
		DisplayName: "Worker",
		Password:    "hunter22!",
	})
	require.NoError(t, err)
	assert.Equal(t, "worker@example.com", profile.Email)
	assert.Equal(t, profiledomain.RoleMember, profile.Role)
	assert.NotEmpty(t, profile.PasswordHash)

	_, err = env.svc.Create(env.ctx, profiledomain.CreateProfileRequest{
		Email:       "short@example.com",
		DisplayName: "Short",
		Password:    "short",
	})
	assert.ErrorIs(t, err, profiledomain.ErrInvalidRequest)

	_, err = env.svc.Create(env.ctx, profiledomain.CreateProfileRequest{
		Email:       "boss@example.com",
		DisplayName: "Boss",
		Password:    "hunter22!",
		Role:        profiledomain.Role("superuser"),
	})
	assert.ErrorIs(t, err, profiledomain.ErrInvalidRequest)
}

func TestEmailUniqueAcrossTenants(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(env.ctx, profiledomain.CreateProfileRequest{
		Email:       "worker@example.com",
		DisplayName: "Worker",
		Password:    "hunter22!",
	})
	require.NoError(t, err)

	// login identifies a profile by email alone, so the same address cannot
	// be registered under another tenant
	otherCtx := tenantctx.WithUserID(
		tenantctx.WithTenantID(context.Background(), env.node.Generate().Int64()),
		env.node.Generate().Int64(),
	)
	_, err = env.svc.Create(otherCtx, profiledomain.CreateProfileRequest{
		Email:       "Worker@example.com",
		DisplayName: "Impostor",
		Password:    "hunter22!",
	})
	assert.ErrorIs(t, err, profiledomain.ErrInvalidRequest)
}
