package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicedomain "github.com/billablehq/billable/internal/invoice/domain"
	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
)

func TestStatusTransitionAllowed(t *testing.T) {
	allowed := []struct{ from, to invoicedomain.Status }{
		{invoicedomain.StatusDraft, invoicedomain.StatusSent},
		{invoicedomain.StatusDraft, invoicedomain.StatusCancelled},
		{invoicedomain.StatusSent, invoicedomain.StatusPaid},
		{invoicedomain.StatusSent, invoicedomain.StatusPartial},
		{invoicedomain.StatusSent, invoicedomain.StatusOverdue},
		{invoicedomain.StatusPartial, invoicedomain.StatusPaid},
		{invoicedomain.StatusOverdue, invoicedomain.StatusPaid},
	}
	for _, tc := range allowed {
		assert.True(t, statusTransitionAllowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to invoicedomain.Status }{
		{invoicedomain.StatusDraft, invoicedomain.StatusPaid},
		{invoicedomain.StatusPaid, invoicedomain.StatusSent},
		{invoicedomain.StatusPaid, invoicedomain.StatusCancelled},
		{invoicedomain.StatusCancelled, invoicedomain.StatusSent},
		{invoicedomain.StatusSent, invoicedomain.StatusDraft},
		{invoicedomain.StatusDraft, invoicedomain.StatusDraft},
	}
	for _, tc := range denied {
		assert.False(t, statusTransitionAllowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusStampsApproval(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t, "globex", dec("100"))
	ticket := env.createTicket(t, client.ID)
	env.createEntry(t, entrySpec{ticketID: ticket.ID, hours: "1", date: "2024-06-10", billable: true, status: timeentrydomain.ApprovalApproved})

	resp, err := env.svc.Generate(env.ctx, invoicedomain.GenerateRequest{
		RangeStart: "2024-06-01",
		RangeEnd:   "2024-06-30",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	invoiceID := resp.Invoices[0].Invoice.ID.String()

	sent, err := env.svc.UpdateStatus(env.ctx, invoiceID, invoicedomain.UpdateStatusRequest{
		Status: invoicedomain.StatusSent,
	})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusSent, sent.Status)
	assert.Equal(t, invoicedomain.ApprovalApproved, sent.ApprovalStatus)
	require.NotNil(t, sent.ApprovedBy)
	assert.Equal(t, env.userID, *sent.ApprovedBy)

	_, err = env.svc.UpdateStatus(env.ctx, invoiceID, invoicedomain.UpdateStatusRequest{
		Status: invoicedomain.StatusDraft,
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidStatus)

	paid, err := env.svc.UpdateStatus(env.ctx, invoiceID, invoicedomain.UpdateStatusRequest{
		Status: invoicedomain.StatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusPaid, paid.Status)

	detail, err := env.svc.GetByID(env.ctx, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.StatusPaid, detail.Invoice.Status)
	assert.Len(t, detail.LineItems, 1)
}
