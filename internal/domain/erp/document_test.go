package erp

import (
	"errors"
	"strings"
	"testing"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T) *SalesDocument {
	t.Helper()
	o := newTestOrder(t)
	config, err := NewErpConfig(o.TenantID, ErpTypeEcount, "COM1", "user", "key")
	require.NoError(t, err)

	lines := NewTemplateLineBuilder(WithSerialSource(fixedSerial)).Build(o, testSettlements(o, 2500, 99), newTestTemplate(o.TenantID))
	doc, err := NewSalesDocument(o, config, lines)
	require.NoError(t, err)
	return doc
}

func TestNewSalesDocument(t *testing.T) {
	doc := newTestDocument(t)

	assert.Equal(t, DocumentStatusPending, doc.Status)
	assert.Equal(t, ErpTypeEcount, doc.ErpType)
	assert.Equal(t, "27901", doc.TotalAmount.String())
	assert.True(t, doc.TotalAmount.Equal(doc.Lines.Total()))
	assert.Equal(t, "C200", doc.CustomerCode)
	assert.Equal(t, "Online", doc.CustomerName)
	assert.Equal(t, "2024-03-15", doc.DocumentDate.Format("2006-01-02"))

	events := doc.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeDocumentGenerated, events[0].EventType())
	assert.Equal(t, doc.TenantID, events[0].TenantID())
}

func TestNewSalesDocument_TenantMismatch(t *testing.T) {
	o := newTestOrder(t)
	config, err := NewErpConfig(uuid.New(), ErpTypeEcount, "COM1", "user", "key")
	require.NoError(t, err)

	_, err = NewSalesDocument(o, config, nil)
	assert.Error(t, err)

	_, err = NewSalesDocument(o, nil, nil)
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestSalesDocument_MarkSent(t *testing.T) {
	doc := newTestDocument(t)
	doc.ClearDomainEvents()

	require.NoError(t, doc.MarkSent("SLIP-1"))
	assert.Equal(t, DocumentStatusSent, doc.Status)
	assert.Equal(t, "SLIP-1", doc.ErpDocumentID)
	assert.NotNil(t, doc.SentAt)
	assert.False(t, doc.CanRetry())
	assert.False(t, doc.CanCancel())
	assert.Equal(t, 2, doc.Version)

	events := doc.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeDocumentSent, events[0].EventType())

	err := doc.MarkSent("SLIP-2")
	assert.ErrorIs(t, err, ErrDocumentAlreadySent)
	assert.Equal(t, "SLIP-1", doc.ErpDocumentID)

	err = doc.MarkFailed("late failure")
	assert.ErrorIs(t, err, ErrDocumentAlreadySent)
	assert.Equal(t, DocumentStatusSent, doc.Status)
}

func TestSalesDocument_RetryAfterFailure(t *testing.T) {
	doc := newTestDocument(t)

	require.NoError(t, doc.MarkFailed("  timeout  "))
	assert.Equal(t, DocumentStatusFailed, doc.Status)
	assert.Equal(t, "timeout", doc.ErrorMessage)
	assert.True(t, doc.CanRetry())

	require.NoError(t, doc.MarkFailed("timeout again"))
	assert.Equal(t, "timeout again", doc.ErrorMessage)

	require.NoError(t, doc.MarkSent("SLIP-9"))
	assert.Equal(t, DocumentStatusSent, doc.Status)
	assert.Empty(t, doc.ErrorMessage)
}

func TestSalesDocument_Cancel(t *testing.T) {
	t.Run("pending", func(t *testing.T) {
		doc := newTestDocument(t)
		require.NoError(t, doc.Cancel())
		assert.Equal(t, DocumentStatusCancelled, doc.Status)
		assert.False(t, doc.IsActive())
	})

	t.Run("failed", func(t *testing.T) {
		doc := newTestDocument(t)
		require.NoError(t, doc.MarkFailed("boom"))
		require.NoError(t, doc.Cancel())
		assert.Equal(t, DocumentStatusCancelled, doc.Status)
	})

	t.Run("sent", func(t *testing.T) {
		doc := newTestDocument(t)
		require.NoError(t, doc.MarkSent("SLIP-1"))
		err := doc.Cancel()
		assert.ErrorIs(t, err, ErrDocumentCannotCancel)
		assert.Equal(t, DocumentStatusSent, doc.Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		doc := newTestDocument(t)
		require.NoError(t, doc.Cancel())
		assert.ErrorIs(t, doc.Cancel(), ErrDocumentCannotCancel)

		err := doc.MarkSent("SLIP-1")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestSalesDocument_ErrorMessageIsBounded(t *testing.T) {
	doc := newTestDocument(t)
	require.NoError(t, doc.MarkFailed(strings.Repeat("오", maxErrorMessageLength+10)))
	assert.Equal(t, maxErrorMessageLength, len([]rune(doc.ErrorMessage)))
}

func TestDocumentStatus_Transitions(t *testing.T) {
	tests := []struct {
		from   DocumentStatus
		to     DocumentStatus
		allows bool
	}{
		{DocumentStatusPending, DocumentStatusSent, true},
		{DocumentStatusPending, DocumentStatusFailed, true},
		{DocumentStatusPending, DocumentStatusCancelled, true},
		{DocumentStatusFailed, DocumentStatusSent, true},
		{DocumentStatusFailed, DocumentStatusCancelled, true},
		{DocumentStatusSent, DocumentStatusFailed, false},
		{DocumentStatusSent, DocumentStatusCancelled, false},
		{DocumentStatusCancelled, DocumentStatusPending, false},
		{DocumentStatusCancelled, DocumentStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allows, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, DocumentStatusSent.IsTerminal())
	assert.True(t, DocumentStatusCancelled.IsTerminal())
	assert.False(t, DocumentStatusFailed.IsTerminal())
	assert.False(t, DocumentStatus("DRAFT").IsValid())
}
