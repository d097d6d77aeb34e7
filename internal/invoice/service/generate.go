package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/config"
	invoicedomain "github.com/billablehq/billable/internal/invoice/domain"
	"github.com/billablehq/billable/internal/metrics"
	notificationdomain "github.com/billablehq/billable/internal/notification/domain"
	"github.com/billablehq/billable/internal/tenantctx"
	"github.com/billablehq/billable/pkg/db"
)

// defaultLineDescription is used when the source time entry has none.
const defaultLineDescription = "Work on ticket"

var (
	errClientMissing  = errors.New("client not found")
	errEntriesClaimed = errors.New("time entries were billed concurrently")
	errTenantNotFound = errors.New("tenant not found")
)

// Generate runs one invoicing pass: select unbilled approved entries in the
// range, group them by client, and create one invoice per group. Groups are
// processed sequentially; a failing group is skipped and reported, it never
// aborts the rest of the run.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (invoicedomain.GenerateResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return invoicedomain.GenerateResponse{}, invoicedomain.ErrInvalidTenant
	}
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		return invoicedomain.GenerateResponse{}, invoicedomain.ErrInvalidTenant
	}

	rangeStart, err := invoicedomain.ParseDate(req.RangeStart)
	if err != nil {
		return invoicedomain.GenerateResponse{}, err
	}
	rangeEnd, err := invoicedomain.ParseDate(req.RangeEnd)
	if err != nil {
		return invoicedomain.GenerateResponse{}, err
	}
	if rangeEnd.Before(rangeStart) {
		return invoicedomain.GenerateResponse{}, invoicedomain.ErrInvalidRange
	}

	var clientID snowflake.ID
	if trimmed := strings.TrimSpace(req.ClientID); trimmed != "" {
		clientID, err = snowflake.ParseString(trimmed)
		if err != nil {
			return invoicedomain.GenerateResponse{}, invoicedomain.ErrInvalidRequest
		}
	}

	entries, err := s.listEligibleEntries(ctx, tenantID, clientID, rangeStart, rangeEnd, req.IncludeNonBillable)
	if err != nil {
		metrics.InvoiceRunsTotal.WithLabelValues("error").Inc()
		return invoicedomain.GenerateResponse{}, err
	}
	if len(entries) == 0 {
		metrics.InvoiceRunsTotal.WithLabelValues("empty").Inc()
		return invoicedomain.GenerateResponse{
			Invoices: []invoicedomain.CreatedInvoice{},
			Summary:  invoicedomain.GenerateSummary{TotalAmount: decimal.Zero},
			Message:  "no unbilled approved time entries in the selected range",
		}, nil
	}

	cfg := s.invoicing.Get()
	groups := groupByClient(entries)

	resp := invoicedomain.GenerateResponse{
		Invoices: make([]invoicedomain.CreatedInvoice, 0, len(groups)),
		Summary:  invoicedomain.GenerateSummary{TotalAmount: decimal.Zero},
	}

	release := s.acquireNumberLock(ctx, tenantID)
	defer release()

	for _, group := range groups {
		created, err := s.invoiceClientGroup(ctx, tenantID, userID, cfg, group, req.AutoApprove)
		if err != nil {
			s.log.Warn("skipping client group",
				zap.Int64("tenant_id", tenantID.Int64()),
				zap.Int64("client_id", group.clientID.Int64()),
				zap.Error(err),
			)
			resp.Skipped = append(resp.Skipped, invoicedomain.SkippedClient{
				ClientID: group.clientID,
				Reason:   err.Error(),
			})
			continue
		}

		metrics.InvoicesGeneratedTotal.Inc()
		resp.Invoices = append(resp.Invoices, *created)
		resp.Summary.InvoiceCount++
		resp.Summary.ClientCount++
		resp.Summary.TotalAmount = resp.Summary.TotalAmount.Add(created.Invoice.TotalAmount)

		if req.SendNotification {
			s.notifyClient(ctx, created)
		}
	}

	if len(resp.Invoices) == 0 && len(resp.Skipped) > 0 {
		metrics.InvoiceRunsTotal.WithLabelValues("failed").Inc()
	} else if len(resp.Skipped) > 0 {
		metrics.InvoiceRunsTotal.WithLabelValues("partial").Inc()
	} else {
		metrics.InvoiceRunsTotal.WithLabelValues("ok").Inc()
	}
	return resp, nil
}

type eligibleEntry struct {
	ID          snowflake.ID
	TicketID    snowflake.ID
	UserID      snowflake.ID
	Description string
	Hours       decimal.Decimal
	EntryDate   time.Time
	ClientID    snowflake.ID
}

type clientGroup struct {
	clientID snowflake.ID
	entries  []eligibleEntry
}

func (s *Service) listEligibleEntries(ctx context.Context, tenantID, clientID snowflake.ID, start, end time.Time, includeNonBillable bool) ([]eligibleEntry, error) {
	query := `SELECT te.id, te.ticket_id, te.user_id, te.description, te.hours, te.entry_date, t.client_id
	 FROM time_entries te
	 JOIN tickets t ON t.id = te.ticket_id AND t.tenant_id = te.tenant_id
	 WHERE te.tenant_id = ?
	   AND te.invoice_id IS NULL
	   AND te.approval_status = 'approved'
	   AND te.entry_date >= ?
	   AND te.entry_date <= ?`
	args := []any{tenantID, start, end}

	if !includeNonBillable {
		query += ` AND te.is_billable = ?`
		args = append(args, true)
	}
	if clientID != 0 {
		query += ` AND t.client_id = ?`
		args = append(args, clientID)
	}
	query += ` ORDER BY t.client_id, te.entry_date, te.id`

	var rows []eligibleEntry
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// groupByClient partitions entries by client, preserving first-seen order.
func groupByClient(entries []eligibleEntry) []clientGroup {
	index := make(map[snowflake.ID]int)
	groups := make([]clientGroup, 0)
	for _, entry := range entries {
		if entry.ClientID == 0 {
			// broken referential integrity; skip rather than crash
			continue
		}
		pos, ok := index[entry.ClientID]
		if !ok {
			pos = len(groups)
			index[entry.ClientID] = pos
			groups = append(groups, clientGroup{clientID: entry.ClientID})
		}
		groups[pos].entries = append(groups[pos].entries, entry)
	}
	return groups
}

// invoiceClientGroup creates one invoice for one client group. The invoice,
// its line items and the time-entry claims are a single transaction; a
// duplicate invoice number is retried once with a fresh allocation.
func (s *Service) invoiceClientGroup(ctx context.Context, tenantID, userID snowflake.ID, cfg config.InvoicingConfig, group clientGroup, autoApprove bool) (*invoicedomain.CreatedInvoice, error) {
	created, err := s.createInvoiceOnce(ctx, tenantID, userID, cfg, group, autoApprove)
	if err != nil && db.IsDuplicateKeyErr(err) {
		s.log.Info("invoice number collision, retrying",
			zap.Int64("tenant_id", tenantID.Int64()),
			zap.Int64("client_id", group.clientID.Int64()),
		)
		created, err = s.createInvoiceOnce(ctx, tenantID, userID, cfg, group, autoApprove)
	}
	return created, err
}

func (s *Service) createInvoiceOnce(ctx context.Context, tenantID, userID snowflake.ID, cfg config.InvoicingConfig, group clientGroup, autoApprove bool) (*invoicedomain.CreatedInvoice, error) {
	var created *invoicedomain.CreatedInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockTenant(ctx, tx, tenantID); err != nil {
			return err
		}

		client, err := s.loadClient(ctx, tx, tenantID, group.clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return errClientMissing
		}

		userRates, err := s.loadUserRates(ctx, tx, tenantID, group.entries)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		invoiceID := s.genID.Generate()
		fallbackRate := cfg.FallbackRate()

		items := make([]invoicedomain.LineItem, 0, len(group.entries))
		entryIDs := make([]snowflake.ID, 0, len(group.entries))
		subtotal := decimal.Zero
		for _, entry := range group.entries {
			rate := resolveRate(client.HourlyRate, userRates[entry.UserID], fallbackRate)
			amount := rate.Mul(entry.Hours).Round(2)

			description := strings.TrimSpace(entry.Description)
			if description == "" {
				description = defaultLineDescription
			}

			items = append(items, invoicedomain.LineItem{
				ID:          s.genID.Generate(),
				TenantID:    tenantID,
				InvoiceID:   invoiceID,
				TimeEntryID: entry.ID,
				Description: description,
				Hours:       entry.Hours,
				Rate:        rate,
				Amount:      amount,
				CreatedAt:   now,
			})
			entryIDs = append(entryIDs, entry.ID)
			subtotal = subtotal.Add(amount)
		}

		taxRate := cfg.TaxRate()
		taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
		totalAmount := subtotal.Add(taxAmount)

		number, err := s.nextInvoiceNumber(ctx, tx, tenantID, cfg.NumberPrefix, now.Year())
		if err != nil {
			return err
		}

		invoice := invoicedomain.Invoice{
			ID:             invoiceID,
			TenantID:       tenantID,
			ClientID:       group.clientID,
			InvoiceNumber:  number,
			Subtotal:       subtotal,
			TaxRate:        taxRate,
			TaxAmount:      taxAmount,
			TotalAmount:    totalAmount,
			Status:         invoicedomain.StatusDraft,
			ApprovalStatus: invoicedomain.ApprovalDraft,
			DueDate:        now.AddDate(0, 0, cfg.NetDueDays),
			CreatedBy:      userID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if autoApprove {
			invoice.Status = invoicedomain.StatusSent
			invoice.ApprovalStatus = invoicedomain.ApprovalApproved
			invoice.ApprovedBy = &userID
			invoice.ApprovedAt = &now
		}

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		// Claim the source entries. The invoice_id IS NULL guard plus the
		// affected-row check guarantees no entry is ever billed twice, even
		// under concurrent runs.
		claim := tx.Exec(
			`UPDATE time_entries
			 SET invoice_id = ?, updated_at = ?
			 WHERE tenant_id = ? AND invoice_id IS NULL AND id IN ?`,
			invoiceID, now, tenantID, entryIDs,
		)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected != int64(len(entryIDs)) {
			return errEntriesClaimed
		}

		created = &invoicedomain.CreatedInvoice{
			Invoice:    invoice,
			ClientName: client.Name,
			LineItems:  items,
			EntryCount: len(items),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveRate applies the per-entry billing-rate fallback chain:
// client rate, then the user's default rate, then the configured fallback.
func resolveRate(clientRate, userRate *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if clientRate != nil {
		return *clientRate
	}
	if userRate != nil {
		return *userRate
	}
	return fallback
}

type clientRow struct {
	ID         snowflake.ID
	Name       string
	Email      string
	HourlyRate *decimal.Decimal
}

func (s *Service) loadClient(ctx context.Context, tx *gorm.DB, tenantID, clientID snowflake.ID) (*clientRow, error) {
	var client clientRow
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, email, hourly_rate
		 FROM clients
		 WHERE tenant_id = ? AND id = ?`,
		tenantID,
		clientID,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

type userRateRow struct {
	ID                snowflake.ID
	DefaultHourlyRate *decimal.Decimal
}

func (s *Service) loadUserRates(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, entries []eligibleEntry) (map[snowflake.ID]*decimal.Decimal, error) {
	seen := make(map[snowflake.ID]bool)
	userIDs := make([]snowflake.ID, 0)
	for _, entry := range entries {
		if entry.UserID == 0 || seen[entry.UserID] {
			continue
		}
		seen[entry.UserID] = true
		userIDs = append(userIDs, entry.UserID)
	}

	rates := make(map[snowflake.ID]*decimal.Decimal, len(userIDs))
	if len(userIDs) == 0 {
		return rates, nil
	}

	var rows []userRateRow
	err := tx.WithContext(ctx).Raw(
		`SELECT id, default_hourly_rate
		 FROM profiles
		 WHERE tenant_id = ? AND id IN ?`,
		tenantID,
		userIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		rates[row.ID] = row.DefaultHourlyRate
	}
	return rates, nil
}

// lockTenant serializes invoice creation per tenant for the duration of the
// transaction. SQLite has no row locks; its writes are serialized anyway and
// the unique invoice-number index covers the rest.
func (s *Service) lockTenant(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID) error {
	if s.db.Dialector.Name() == "sqlite" {
		var id snowflake.ID
		if err := tx.WithContext(ctx).Raw(`SELECT id FROM tenants WHERE id = ?`, tenantID).Scan(&id).Error; err != nil {
			return err
		}
		if id == 0 {
			return errTenantNotFound
		}
		return nil
	}

	var id snowflake.ID
	err := tx.WithContext(ctx).Raw(
		`SELECT id FROM tenants WHERE id = ? FOR UPDATE`,
		tenantID,
	).Scan(&id).Error
	if err != nil {
		return err
	}
	if id == 0 {
		return errTenantNotFound
	}
	return nil
}

// nextInvoiceNumber allocates the next number in the tenant's current-year
// sequence. Runs under the tenant lock; the unique index plus a single retry
// covers allocations racing from other processes.
func (s *Service) nextInvoiceNumber(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, prefix string, year int) (string, error) {
	yearPrefix := invoicedomain.NumberPrefix(prefix, year)

	// Sequences are padded to four digits, so within a year longer numbers
	// are always larger; ordering by length first keeps the scan correct
	// once a sequence outgrows the padding.
	var latest string
	err := tx.WithContext(ctx).Raw(
		`SELECT invoice_number
		 FROM invoices
		 WHERE tenant_id = ? AND invoice_number LIKE ?
		 ORDER BY LENGTH(invoice_number) DESC, invoice_number DESC
		 LIMIT 1`,
		tenantID,
		yearPrefix+"%",
	).Scan(&latest).Error
	if err != nil {
		return "", err
	}

	seq := invoicedomain.ParseSequence(latest, prefix, year) + 1
	return invoicedomain.FormatNumber(prefix, year, seq), nil
}

// acquireNumberLock takes the optional cross-process allocation lock. The
// returned release func is always safe to call.
func (s *Service) acquireNumberLock(ctx context.Context, tenantID snowflake.ID) func() {
	if s.locker == nil {
		return func() {}
	}

	key := fmt.Sprintf("billable:invoice-number:%d", tenantID.Int64())
	token, ok, err := s.locker.TryLock(ctx, key, 30*time.Second)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("invoice number lock unavailable", zap.Error(err))
		}
		return func() {}
	}
	return func() {
		_ = s.locker.Release(ctx, key, token)
	}
}

func (s *Service) notifyClient(ctx context.Context, created *invoicedomain.CreatedInvoice) {
	client, err := s.loadClient(ctx, s.db, created.Invoice.TenantID, created.Invoice.ClientID)
	if err != nil || client == nil || client.Email == "" {
		s.log.Warn("cannot resolve notification recipient",
			zap.Int64("client_id", created.Invoice.ClientID.Int64()),
			zap.Error(err),
		)
		return
	}

	subject := fmt.Sprintf("Invoice %s from your service provider", created.Invoice.InvoiceNumber)
	body := fmt.Sprintf(
		"Hello %s,\n\nA new invoice %s has been created for you.\n\nAmount due: %s\nDue date: %s\nLine items: %d\n",
		client.Name,
		created.Invoice.InvoiceNumber,
		created.Invoice.TotalAmount.StringFixed(2),
		created.Invoice.DueDate.Format(invoicedomain.DateLayout),
		len(created.LineItems),
	)

	entry, err := s.notifier.Enqueue(ctx, notificationdomain.EnqueueRequest{
		RecipientEmail: client.Email,
		Type:           notificationdomain.TypeInvoiceCreated,
		Subject:        subject,
		Body:           body,
	})
	if err != nil {
		s.log.Warn("notification enqueue failed", zap.Error(err))
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(entry.Status)).Inc()
}
