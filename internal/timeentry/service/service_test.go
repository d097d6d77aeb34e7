package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	clientdomain "github.com/billablehq/billable/internal/client/domain"
	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/tenantctx"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
)

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	svc    timeentrydomain.Service
	ctx    context.Context
	ticket ticketdomain.Ticket
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&ticketdomain.Ticket{},
		&timeentrydomain.TimeEntry{},
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

	ticket := ticketdomain.Ticket{
		ID: node.Generate(), TenantID: tenantID, ClientID: client.ID,
		Title: "Support request", Priority: ticketdomain.PriorityMedium,
		Status: ticketdomain.StatusOpen, CreatedBy: userID,
		CreatedAt: fake.Now(), UpdatedAt: fake.Now(),
	}
	require.NoError(t, db.Create(&ticket).Error)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: fake,
	})

	return &testEnv{db: db, node: node, clock: fake, svc: svc, ctx: ctx, ticket: ticket}
}

func (e *testEnv) logEntry(t *testing.T) timeentrydomain.TimeEntry {
	t.Helper()
	entry, err := e.svc.Log(e.ctx, timeentrydomain.LogTimeRequest{
		TicketID:    e.ticket.ID.String(),
		Description: "work",
		Hours:       decimal.RequireFromString("2.5"),
		EntryDate:   "2024-06-10",
	})
	require.NoError(t, err)
	return entry
}

func TestLog(t *testing.T) {
	env := newTestEnv(t)

	entry := env.logEntry(t)
	assert.Equal(t, timeentrydomain.ApprovalDraft, entry.ApprovalStatus)
	assert.True(t, entry.IsBillable)
	assert.False(t, entry.Billed())

	_, err := env.svc.Log(env.ctx, timeentrydomain.LogTimeRequest{
		TicketID:  env.ticket.ID.String(),
		Hours:     decimal.Zero,
		EntryDate: "2024-06-10",
	})
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidRequest)

	_, err = env.svc.Log(env.ctx, timeentrydomain.LogTimeRequest{
		TicketID:  env.node.Generate().String(),
		Hours:     decimal.NewFromInt(1),
		EntryDate: "2024-06-10",
	})
	assert.ErrorIs(t, err, ticketdomain.ErrNotFound)
}

func TestLogNonBillable(t *testing.T) {
	env := newTestEnv(t)

	billable := false
	entry, err := env.svc.Log(env.ctx, timeentrydomain.LogTimeRequest{
		TicketID:   env.ticket.ID.String(),
		Hours:      decimal.NewFromInt(1),
		EntryDate:  "2024-06-10",
		IsBillable: &billable,
	})
	require.NoError(t, err)
	assert.False(t, entry.IsBillable)

	// false must survive the round trip to the database
	var stored timeentrydomain.TimeEntry
	require.NoError(t, env.db.First(&stored, entry.ID).Error)
	assert.False(t, stored.IsBillable)
}

func TestApprovalWorkflow(t *testing.T) {
	env := newTestEnv(t)
	entry := env.logEntry(t)
	id := entry.ID.String()

	// draft cannot be approved directly
	_, err := env.svc.Approve(env.ctx, id)
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidTransition)

	submitted, err := env.svc.Submit(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timeentrydomain.ApprovalSubmitted, submitted.ApprovalStatus)

	_, err = env.svc.Submit(env.ctx, id)
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidTransition)

	rejected, err := env.svc.Reject(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timeentrydomain.ApprovalRejected, rejected.ApprovalStatus)

	// rejected entries can be fixed and resubmitted
	_, err = env.svc.Update(env.ctx, id, timeentrydomain.UpdateTimeEntryRequest{
		Hours: dec("3"),
	})
	require.NoError(t, err)

	_, err = env.svc.Submit(env.ctx, id)
	require.NoError(t, err)
	approved, err := env.svc.Approve(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timeentrydomain.ApprovalApproved, approved.ApprovalStatus)

	// approved entries are no longer editable
	_, err = env.svc.Update(env.ctx, id, timeentrydomain.UpdateTimeEntryRequest{Hours: dec("4")})
	assert.ErrorIs(t, err, timeentrydomain.ErrInvalidTransition)
}

func TestBilledEntryIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	entry := env.logEntry(t)

	invoiceID := env.node.Generate()
	require.NoError(t, env.db.Model(&timeentrydomain.TimeEntry{}).
		Where("id = ?", entry.ID).
		Update("invoice_id", invoiceID).Error)

	_, err := env.svc.Update(env.ctx, entry.ID.String(), timeentrydomain.UpdateTimeEntryRequest{Hours: dec("9")})
	assert.ErrorIs(t, err, timeentrydomain.ErrEntryBilled)

	_, err = env.svc.Submit(env.ctx, entry.ID.String())
	assert.ErrorIs(t, err, timeentrydomain.ErrEntryBilled)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	first := env.logEntry(t)

	second, err := env.svc.Log(env.ctx, timeentrydomain.LogTimeRequest{
		TicketID:  env.ticket.ID.String(),
		Hours:     decimal.NewFromInt(1),
		EntryDate: "2024-06-20",
	})
	require.NoError(t, err)

	resp, err := env.svc.List(env.ctx, timeentrydomain.ListTimeEntryRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 2)
	assert.True(t, resp.TotalHours.Equal(decimal.RequireFromString("3.5")))

	resp, err = env.svc.List(env.ctx, timeentrydomain.ListTimeEntryRequest{
		From: "2024-06-15",
		To:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, second.ID, resp.Entries[0].ID)

	// billed entries drop out of the unbilled view
	invoiceID := env.node.Generate()
	require.NoError(t, env.db.Model(&timeentrydomain.TimeEntry{}).
		Where("id = ?", first.ID).
		Update("invoice_id", invoiceID).Error)

	resp, err = env.svc.List(env.ctx, timeentrydomain.ListTimeEntryRequest{Unbilled: true})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, second.ID, resp.Entries[0].ID)
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	entry := env.logEntry(t)

	otherCtx := tenantctx.WithUserID(
		tenantctx.WithTenantID(context.Background(), env.node.Generate().Int64()),
		env.node.Generate().Int64(),
	)
	_, err := env.svc.GetByID(otherCtx, entry.ID.String())
	assert.ErrorIs(t, err, timeentrydomain.ErrNotFound)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
