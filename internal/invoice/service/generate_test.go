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
	"github.com/billablehq/billable/internal/config"
	invoicedomain "github.com/billablehq/billable/internal/invoice/domain"
	notificationdomain "github.com/billablehq/billable/internal/notification/domain"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/internal/tenantctx"
	tenantdomain "github.com/billablehq/billable/internal/tenant/domain"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
)

type fakeNotifier struct {
	enqueued []notificationdomain.EnqueueRequest
}

func (f *fakeNotifier) Enqueue(ctx context.Context, req notificationdomain.EnqueueRequest) (notificationdomain.NotificationLog, error) {
	f.enqueued = append(f.enqueued, req)
	return notificationdomain.NotificationLog{Status: notificationdomain.StatusSent}, nil
}

func (f *fakeNotifier) List(ctx context.Context) (notificationdomain.ListNotificationResponse, error) {
	return notificationdomain.ListNotificationResponse{}, nil
}

type testEnv struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	notifier *fakeNotifier
	svc      *Service

	tenantID snowflake.ID
	userID   snowflake.ID
	ctx      context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&tenantdomain.Tenant{},
		&profiledomain.Profile{},
		&clientdomain.Client{},
		&ticketdomain.Ticket{},
		&timeentrydomain.TimeEntry{},
		&invoicedomain.Invoice{},
		&invoicedomain.LineItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	notifier := &fakeNotifier{}

	svcIface := NewService(ServiceParam{
		DB:        db,
		Log:       zaptest.NewLogger(t),
		GenID:     node,
		Clock:     fake,
		Invoicing: config.NewStaticInvoicingConfigHolder(config.DefaultInvoicingConfig()),
		Notifier:  notifier,
	})

	env := &testEnv{
		db:       db,
		node:     node,
		clock:    fake,
		notifier: notifier,
		svc:      svcIface.(*Service),
		tenantID: node.Generate(),
		userID:   node.Generate(),
	}
	env.ctx = tenantctx.WithUserID(tenantctx.WithTenantID(context.Background(), env.tenantID.Int64()), env.userID.Int64())

	require.NoError(t, db.Create(&tenantdomain.Tenant{
		ID:        env.tenantID,
		Name:      "Acme",
		CreatedAt: fake.Now(),
	}).Error)

	return env
}

func (e *testEnv) createClient(t *testing.T, name string, rate *decimal.Decimal) clientdomain.Client {
	t.Helper()
	client := clientdomain.Client{
		ID:         e.node.Generate(),
		TenantID:   e.tenantID,
		Name:       name,
		Email:      name + "@example.com",
		HourlyRate: rate,
		CreatedAt:  e.clock.Now(),
		UpdatedAt:  e.clock.Now(),
	}
	require.NoError(t, e.db.Create(&client).Error)
	return client
}

func (e *testEnv) createUser(t *testing.T, rate *decimal.Decimal) snowflake.ID {
	t.Helper()
	profile := profiledomain.Profile{
		ID:                e.node.Generate(),
		TenantID:          e.tenantID,
		Email:             fmt.Sprintf("user-%d@example.com", e.node.Generate()),
		DisplayName:       "Worker",
		PasswordHash:      "x",
		Role:              profiledomain.RoleMember,
		DefaultHourlyRate: rate,
		CreatedAt:         e.clock.Now(),
		UpdatedAt:         e.clock.Now(),
	}
	require.NoError(t, e.db.Create(&profile).Error)
	return profile.ID
}

func (e *testEnv) createTicket(t *testing.T, clientID snowflake.ID) ticketdomain.Ticket {
	t.Helper()
	ticket := ticketdomain.Ticket{
		ID:        e.node.Generate(),
		TenantID:  e.tenantID,
		ClientID:  clientID,
		Title:     "Support request",
		Priority:  ticketdomain.PriorityMedium,
		Status:    ticketdomain.StatusOpen,
		CreatedBy: e.userID,
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	require.NoError(t, e.db.Create(&ticket).Error)
	return ticket
}

type entrySpec struct {
	ticketID snowflake.ID
	userID   snowflake.ID
	hours    string
	date     string
	billable bool
	status   timeentrydomain.ApprovalStatus
	desc     string
}

func (e *testEnv) createEntry(t *testing.T, spec entrySpec) timeentrydomain.TimeEntry {
	t.Helper()
	userID := spec.userID
	if userID == 0 {
		userID = e.userID
	}
	date, err := time.Parse("2006-01-02", spec.date)
	require.NoError(t, err)
	entry := timeentrydomain.TimeEntry{
		ID:             e.node.Generate(),
		TenantID:       e.tenantID,
		TicketID:       spec.ticketID,
		UserID:         userID,
		Description:    spec.desc,
		Hours:          decimal.RequireFromString(spec.hours),
		IsBillable:     spec.billable,
		ApprovalStatus: spec.status,
		EntryDate:      date,
		CreatedAt:      e.clock.Now(),
		UpdatedAt:      e.clock.Now(),
	}
	require.NoError(t, e.db.Create(&entry).Error)
	return entry
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestGenerate_SingleClientInvoice(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	entry := env.createEntry(t, entrySpec{
		ticketID: ticket.ID, hours: "2.5", date: "2024-06-10",
		billable: true, status: timeentrydomain.ApprovalApproved, desc: "Debug login flow",
	})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Empty(t, resp.Skipped)

	created := resp.Invoices[0]
	assert.Equal(t, "INV-2024-0001", created.Invoice.InvoiceNumber)
	assert.Equal(t, invoicedomain.StatusDraft, created.Invoice.Status)
	assert.Equal(t, "globex", created.ClientName)
	assert.Equal(t, 1, created.EntryCount)
	assert.True(t, created.Invoice.Subtotal.Equal(decimal.RequireFromString("250")), created.Invoice.Subtotal.String())
	assert.True(t, created.Invoice.TaxAmount.IsZero())
	assert.True(t, created.Invoice.TotalAmount.Equal(decimal.RequireFromString("250")))
	assert.Equal(t, env.clock.Now().AddDate(0, 0, 30), created.Invoice.DueDate)

	require.Len(t, created.LineItems, 1)
	item := created.LineItems[0]
	assert.Equal(t, entry.ID, item.TimeEntryID)
	assert.Equal(t, "Debug login flow", item.Description)
	assert.True(t, item.Rate.Equal(decimal.RequireFromString("100")))
	assert.True(t, item.Amount.Equal(decimal.RequireFromString("250")))

	var stored timeentrydomain.TimeEntry
	require.NoError(t, env.db.First(&stored, "id = ?", entry.ID).Error)
	require.NotNil(t, stored.InvoiceID)
	assert.Equal(t, created.Invoice.ID, *stored.InvoiceID)

	assert.Equal(t, 1, resp.Summary.InvoiceCount)
	assert.Equal(t, 1, resp.Summary.ClientCount)
	assert.True(t, resp.Summary.TotalAmount.Equal(decimal.RequireFromString("250")))
}

func TestGenerate_NeverBillsTwice(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{
		ticketID: ticket.ID, hours: "3", date: "2024-06-10",
		billable: true, status: timeentrydomain.ApprovalApproved,
	})

	req := invoicedomain.GenerateRequest{RangeStart: "2024-06-01", RangeEnd: "2024-06-30"}

	first, err := env.svc.Generate(env.ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Invoices, 1)

	second, err := env.svc.Generate(env.ctx, req)
	require.NoError(t, err)
	assert.Empty(t, second.Invoices)
	assert.NotEmpty(t, second.Message)

	var count int64
	require.NoError(t, env.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGenerate_GroupsByClient(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.createClient(t, "alpha", dec("50"))
	beta := env.createClient(t, "beta", dec("80"))
	alphaTicket := env.createTicket(t, alpha.ID)
	betaTicket := env.createTicket(t, beta.ID)

	env.createEntry(t, entrySpec{ticketID: alphaTicket.ID, hours: "1", date: "2024-06-05", billable: true, status: timeentrydomain.ApprovalApproved})
	env.createEntry(t, entrySpec{ticketID: betaTicket.ID, hours: "2", date: "2024-06-06", billable: true, status: timeentrydomain.ApprovalApproved})
	env.createEntry(t, entrySpec{ticketID: alphaTicket.ID, hours: "4", date: "2024-06-07", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 2)
	assert.Equal(t, 2, resp.Summary.ClientCount)

	byClient := map[snowflake.ID]invoicedomain.CreatedInvoice{}
	numbers := map[string]bool{}
	for _, inv := range resp.Invoices {
		byClient[inv.Invoice.ClientID] = inv
		numbers[inv.Invoice.InvoiceNumber] = true
	}
	require.Len(t, byClient, 2)
	assert.True(t, numbers["INV-2024-0001"])
	assert.True(t, numbers["INV-2024-0002"])

	assert.Equal(t, 2, byClient[alpha.ID].EntryCount)
	assert.True(t, byClient[alpha.ID].Invoice.TotalAmount.Equal(decimal.RequireFromString("250")))
	assert.Equal(t, 1, byClient[beta.ID].EntryCount)
	assert.True(t, byClient[beta.ID].Invoice.TotalAmount.Equal(decimal.RequireFromString("160")))
}

func TestGenerate_RateFallbackOrder(t *testing.T) {
	env := newTestEnv(t)

	// client rate wins even when the user has a default rate
	withRate := env.createClient(t, "withrate", dec("100"))
	ratedUser := env.createUser(t, dec("60"))
	bareUser := env.createUser(t, nil)
	ticket1 := env.createTicket(t, withRate.ID)
	env.createEntry(t, entrySpec{ticketID: ticket1.ID, userID: ratedUser, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	// no client rate: user default, then configured fallback
	noRate := env.createClient(t, "norate", nil)
	ticket2 := env.createTicket(t, noRate.ID)
	env.createEntry(t, entrySpec{ticketID: ticket2.ID, userID: ratedUser, hours: "1", date: "2024-06-11", billable: true, status: timeentrydomain.ApprovalApproved})
	env.createEntry(t, entrySpec{ticketID: ticket2.ID, userID: bareUser, hours: "1", date: "2024-06-12", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 2)

	rates := map[snowflake.ID][]string{}
	for _, inv := range resp.Invoices {
		for _, item := range inv.LineItems {
			rates[inv.Invoice.ClientID] = append(rates[inv.Invoice.ClientID], item.Rate.String())
		}
	}
	assert.Equal(t, []string{"100"}, rates[withRate.ID])
	assert.ElementsMatch(t, []string{"60", "75"}, rates[noRate.ID])
}

func TestGenerate_EmptyRangeIsSuccess(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-01-01",
		RangeEnd:   "2024-01-31",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Invoices)
	assert.Empty(t, resp.Skipped)
	assert.Equal(t, 0, resp.Summary.InvoiceCount)
	assert.True(t, resp.Summary.TotalAmount.IsZero())
	assert.NotEmpty(t, resp.Message)
}

func TestGenerate_SkipsIneligibleEntries(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)

	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalDraft})
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalSubmitted})
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: false, status: timeentrydomain.ApprovalApproved})
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-05-01", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Invoices)
}

func TestGenerate_IncludeNonBillable(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "2", date: "2024-06-10", billable: false, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart:         "2024-06-01",
		RangeEnd:           "2024-06-30",
		IncludeNonBillable: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, 1, resp.Invoices[0].EntryCount)
}

func TestGenerate_AutoApprove(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart:  "2024-06-01",
		RangeEnd:    "2024-06-30",
		AutoApprove: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)

	invoice := resp.Invoices[0].Invoice
	assert.Equal(t, invoicedomain.StatusSent, invoice.Status)
	assert.Equal(t, invoicedomain.ApprovalApproved, invoice.ApprovalStatus)
	require.NotNil(t, invoice.ApprovedBy)
	assert.Equal(t, env.userID, *invoice.ApprovedBy)
	require.NotNil(t, invoice.ApprovedAt)
}

func TestGenerate_NumberSequenceAcrossRuns(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)

	for i := 1; i <= 3; i++ {
		env.createEntry(t, entrySpec{
			ticketID: ticket.ID, hours: "1", date: fmt.Sprintf("2024-06-%02d", i),
			billable: true, status: timeentrydomain.ApprovalApproved,
		})
		resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
			RangeStart: "2024-06-01",
			RangeEnd:   "2024-06-30",
		})
		require.NoError(t, err)
		require.Len(t, resp.Invoices, 1)
		assert.Equal(t, fmt.Sprintf("INV-2024-%04d", i), resp.Invoices[0].Invoice.InvoiceNumber)
	}
}

func TestGenerate_TenantScopedNumbers(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	// an invoice in another tenant must not advance this tenant's sequence
	otherTenant := env.node.Generate()
	require.NoError(t, env.db.Create(&tenantdomain.Tenant{ID: otherTenant, Name: "Other", CreatedAt: env.clock.Now()}).Error)
	require.NoError(t, env.db.Create(&invoicedomain.Invoice{
		ID:            env.node.Generate(),
		TenantID:      otherTenant,
		ClientID:      env.node.Generate(),
		InvoiceNumber: "INV-2024-0007",
		Subtotal:      decimal.Zero,
		TaxRate:       decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.Zero,
		Status:        invoicedomain.StatusDraft,
		DueDate:       env.clock.Now(),
		CreatedBy:     env.userID,
		CreatedAt:     env.clock.Now(),
		UpdatedAt:     env.clock.Now(),
	}).Error)

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, "INV-2024-0001", resp.Invoices[0].Invoice.InvoiceNumber)
}

func TestGenerate_NumberSequencePastFourDigits(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	// "INV-2024-10000" sorts below "INV-2024-9999" lexicographically; the
	// allocator must still continue from the larger sequence
	for _, number := range []string{"INV-2024-9999", "INV-2024-10000"} {
		require.NoError(t, env.db.Create(&invoicedomain.Invoice{
			ID:            env.node.Generate(),
			TenantID:      env.tenantID,
			ClientID:      env.node.Generate(),
			InvoiceNumber: number,
			Subtotal:      decimal.Zero,
			TaxRate:       decimal.Zero,
			TaxAmount:     decimal.Zero,
			TotalAmount:   decimal.Zero,
			Status:        invoicedomain.StatusDraft,
			DueDate:       env.clock.Now(),
			CreatedBy:     env.userID,
			CreatedAt:     env.clock.Now(),
			UpdatedAt:     env.clock.Now(),
		}).Error)
	}

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, "INV-2024-10001", resp.Invoices[0].Invoice.InvoiceNumber)
}

func TestGenerate_TaxApplied(t *testing.T) {
	env := newTestEnv(t)
	cfg := config.DefaultInvoicingConfig()
	cfg.DefaultTaxRate = 10
	env.svc.invoicing = config.NewStaticInvoicingConfigHolder(cfg)

	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "2.5", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)

	invoice := resp.Invoices[0].Invoice
	assert.True(t, invoice.Subtotal.Equal(decimal.RequireFromString("250")))
	assert.True(t, invoice.TaxAmount.Equal(decimal.RequireFromString("25")), invoice.TaxAmount.String())
	assert.True(t, invoice.TotalAmount.Equal(decimal.RequireFromString("275")))
}

func TestGenerate_SendNotification(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart:       "2024-06-01",
		RangeEnd:         "2024-06-30",
		SendNotification: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)

	require.Len(t, env.notifier.enqueued, 1)
	sent := env.notifier.enqueued[0]
	assert.Equal(t, "globex@example.com", sent.RecipientEmail)
	assert.Equal(t, notificationdomain.TypeInvoiceCreated, sent.Type)
	assert.Contains(t, sent.Subject, "INV-2024-0001")
}

func TestGenerate_InvalidRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-30",
		RangeEnd:   "2024-06-01",
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidRange)

	_, err = env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "not-a-date",
		RangeEnd:   "2024-06-30",
	})
	assert.Error(t, err)
}

func TestGenerate_MissingTenant(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidTenant)
}

func TestGenerate_ClientFilter(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.createClient(t, "alpha", dec("50"))
	beta := env.createClient(t, "beta", dec("80"))
	alphaTicket := env.createTicket(t, alpha.ID)
	betaTicket := env.createTicket(t, beta.ID)
	env.createEntry(t, entrySpec{ticketID: alphaTicket.ID, hours: "1", date: "2024-06-05", billable: true, status: timeentrydomain.ApprovalApproved})
	env.createEntry(t, entrySpec{ticketID: betaTicket.ID, hours: "1", date: "2024-06-05", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		ClientID:   alpha.ID.String(),
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, alpha.ID, resp.Invoices[0].Invoice.ClientID)
}

func TestGenerate_PlaceholderDescription(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved, desc: "  "})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	require.Len(t, resp.Invoices[0].LineItems, 1)
	assert.Equal(t, defaultLineDescription, resp.Invoices[0].LineItems[0].Description)
}
