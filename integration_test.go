//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
)

// TestPaymentCaptured_SettlesInvoiceAndUpgradesGrade verifies that a
// payment.captured event on payment.events marks the pending invoice paid,
// recomputes the client's loyalty grade, and announces the upgrade on
// notification.events.
func TestPaymentCaptured_SettlesInvoiceAndUpgradesGrade(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBoardingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a client with one completed stay and a pending invoice large
	// enough to cross the silver spend threshold.
	clientID := uuid.New()
	bookingID := uuid.New()
	invoiceID := uuid.New()
	seedClient(t, infra.DB, clientID)
	seedCompletedBoarding(t, infra.DB, bookingID, clientID)
	seedPendingInvoice(t, infra.DB, invoiceID, clientID, 150000)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := events.PaymentCapturedEvent{
		InvoiceID:     invoiceID,
		ClientID:      clientID,
		AmountCents:   150000,
		Currency:      "EUR",
		PaymentMethod: "card",
		ProviderRef:   "ch_int_test_001",
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment", events.TypePaymentCaptured, evt)

	// Assert: invoice transitions to "paid".
	invoice := waitForInvoiceStatus(t, infra.DB, invoiceID, "paid", 15*time.Second)
	assert.Equal(t, "card", invoice.PaymentMethod)
	assert.NotNil(t, invoice.PaidAt, "paid_at should be set")

	// Assert: the paid total crosses the silver threshold.
	grade := waitForGradeTier(t, infra.DB, clientID, "silver", 15*time.Second)
	assert.False(t, grade.IsOverride)

	// Assert: LoyaltyEvent on notification.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicNotificationEvents,
		events.TypeLoyaltyUpgraded, 15*time.Second)

	var upgraded events.LoyaltyEvent
	require.NoError(t, ce.ParseData(&upgraded))
	assert.Equal(t, clientID, upgraded.ClientID)
	assert.Equal(t, "bronze", upgraded.OldTier)
	assert.Equal(t, "silver", upgraded.NewTier)
}
