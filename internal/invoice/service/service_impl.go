package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/config"
	invoicedomain "github.com/billablehq/billable/internal/invoice/domain"
	"github.com/billablehq/billable/internal/lock"
	notificationdomain "github.com/billablehq/billable/internal/notification/domain"
	"github.com/billablehq/billable/internal/tenantctx"
	"github.com/billablehq/billable/pkg/db/option"
	"github.com/billablehq/billable/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Invoicing *config.InvoicingConfigHolder
	Notifier  notificationdomain.Service
	Locker    *lock.Locker `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder
	notifier  notificationdomain.Service
	locker    *lock.Locker

	invoicerepo repository.Repository[invoicedomain.Invoice]
	itemrepo    repository.Repository[invoicedomain.LineItem]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		invoicing: p.Invoicing,
		notifier:  p.Notifier,
		locker:    p.Locker,

		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		itemrepo:    repository.ProvideStore[invoicedomain.LineItem](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidTenant
	}

	filter := &invoicedomain.Invoice{TenantID: tenantID}
	if req.Status != "" {
		status := invoicedomain.Status(req.Status)
		if !status.Valid() {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidRequest
		}
		filter.Status = status
	}
	if req.ClientID != "" {
		clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidRequest
		}
		filter.ClientID = clientID
	}

	options := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Default: "invoice_number", Desc: true}),
	}
	if req.CreatedFrom != "" {
		from, err := invoicedomain.ParseDate(req.CreatedFrom)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.GTE,
			Value:    from,
		}))
	}
	if req.CreatedTo != "" {
		to, err := invoicedomain.ParseDate(req.CreatedTo)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.LTE,
			Value:    to.AddDate(0, 0, 1),
		}))
	}

	items, err := s.invoicerepo.Find(ctx, filter, options...)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoicedomain.ListInvoiceResponse{Invoices: invoices}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.InvoiceDetail, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return invoicedomain.InvoiceDetail{}, invoicedomain.ErrInvalidTenant
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return invoicedomain.InvoiceDetail{}, invoicedomain.ErrInvalidRequest
	}

	invoice, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID, TenantID: tenantID})
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return invoicedomain.InvoiceDetail{}, invoicedomain.ErrNotFound
	}

	items, err := s.itemrepo.Find(ctx, &invoicedomain.LineItem{InvoiceID: invoiceID, TenantID: tenantID})
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}
	lineItems := make([]invoicedomain.LineItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		lineItems = append(lineItems, *item)
	}

	return invoicedomain.InvoiceDetail{Invoice: *invoice, LineItems: lineItems}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req invoicedomain.UpdateStatusRequest) (invoicedomain.Invoice, error) {
	if !req.Status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	detail, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoice := detail.Invoice

	if !statusTransitionAllowed(invoice.Status, req.Status) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	now := s.clock.Now()
	if req.Status == invoicedomain.StatusSent && invoice.ApprovalStatus == invoicedomain.ApprovalDraft {
		userID, _ := tenantctx.UserIDFromContext(ctx)
		invoice.ApprovalStatus = invoicedomain.ApprovalApproved
		invoice.ApprovedBy = &userID
		invoice.ApprovedAt = &now
	}
	invoice.Status = req.Status
	invoice.UpdatedAt = now

	if err := s.db.WithContext(ctx).Save(&invoice).Error; err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

func statusTransitionAllowed(from, to invoicedomain.Status) bool {
	if from == to {
		return false
	}
	switch from {
	case invoicedomain.StatusDraft:
		return to == invoicedomain.StatusSent || to == invoicedomain.StatusCancelled
	case invoicedomain.StatusSent:
		return to == invoicedomain.StatusPaid || to == invoicedomain.StatusPartial ||
			to == invoicedomain.StatusOverdue || to == invoicedomain.StatusCancelled
	case invoicedomain.StatusPartial:
		return to == invoicedomain.StatusPaid || to == invoicedomain.StatusOverdue ||
			to == invoicedomain.StatusCancelled
	case invoicedomain.StatusOverdue:
		return to == invoicedomain.StatusPaid || to == invoicedomain.StatusPartial ||
			to == invoicedomain.StatusCancelled
	default:
		// paid and cancelled are terminal
		return false
	}
}
