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

	clientdomain "github.com/billablehq/billable/internal/client/domain"
	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/tenantctx"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
)

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	svc    ticketdomain.Service
	ctx    context.Context
	client clientdomain.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&ticketdomain.Ticket{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))

	tenantID := node.Generate()
	userID := node.Generate()
	ctx := tenantctx.WithUserID(tenantctx.WithTenantID(context.Background(), tenantID.Int64()), userID.Int64())

	client := clientdomain.Client{
		ID: node.Generate(), TenantID: tenantID, Name: "globex", Email: "globex@example.com",
		CreatedAt: fake.Now(), UpdatedAt: fake.Now(),
	}
	require.NoError(t, db.Create(&client).Error)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: fake,
	})

	return &testEnv{db: db, node: node, clock: fake, svc: svc, ctx: ctx, client: client}
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	ticket, err := env.svc.Create(env.ctx, ticketdomain.CreateTicketRequest{
		ClientID: env.client.ID.String(),
		Title:    "Login broken",
	})
	require.NoError(t, err)
	assert.Equal(t, ticketdomain.StatusOpen, ticket.Status)
	assert.Equal(t, ticketdomain.PriorityMedium, ticket.Priority)
	assert.Nil(t, ticket.FirstResponseAt)

	_, err = env.svc.Create(env.ctx, ticketdomain.CreateTicketRequest{
		ClientID: env.node.Generate().String(),
		Title:    "Orphan",
	})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestUpdateStampsResponseAndResolution(t *testing.T) {
	env := newTestEnv(t)
	ticket, err := env.svc.Create(env.ctx, ticketdomain.CreateTicketRequest{
		ClientID: env.client.ID.String(),
		Title:    "Login broken",
		Priority: ticketdomain.PriorityHigh,
	})
	require.NoError(t, err)

	env.clock.Advance(30 * time.Minute)
	firstResponse := env.clock.Now()

	inProgress := ticketdomain.StatusInProgress
	updated, err := env.svc.Update(env.ctx, ticket.ID.String(), ticketdomain.UpdateTicketRequest{Status: &inProgress})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstResponseAt)
	assert.Equal(t, firstResponse, *updated.FirstResponseAt)
	assert.Nil(t, updated.ResolvedAt)

	// bouncing through statuses must not move the first-response stamp
	env.clock.Advance(2 * time.Hour)
	open := ticketdomain.StatusOpen
	updated, err = env.svc.Update(env.ctx, ticket.ID.String(), ticketdomain.UpdateTicketRequest{Status: &open})
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	updated, err = env.svc.Update(env.ctx, ticket.ID.String(), ticketdomain.UpdateTicketRequest{Status: &inProgress})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstResponseAt)
	assert.Equal(t, firstResponse, *updated.FirstResponseAt)

	env.clock.Advance(time.Hour)
	resolvedAt := env.clock.Now()
	resolved := ticketdomain.StatusResolved
	updated, err = env.svc.Update(env.ctx, ticket.ID.String(), ticketdomain.UpdateTicketRequest{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, resolvedAt, *updated.ResolvedAt)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(env.ctx, ticketdomain.CreateTicketRequest{
		ClientID: env.client.ID.String(), Title: "A", Priority: ticketdomain.PriorityHigh,
	})
	require.NoError(t, err)
	_, err = env.svc.Create(env.ctx, ticketdomain.CreateTicketRequest{
		ClientID: env.client.ID.String(), Title: "B", Priority: ticketdomain.PriorityLow,
	})
	require.NoError(t, err)

	resp, err := env.svc.List(env.ctx, ticketdomain.ListTicketRequest{Priority: "high"})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, "A", resp.Tickets[0].Title)

	_, err = env.svc.List(env.ctx, ticketdomain.ListTicketRequest{Status: "bogus"})
	assert.ErrorIs(t, err, ticketdomain.ErrInvalidRequest)
}
