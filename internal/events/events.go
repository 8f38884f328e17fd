// Package events defines the Kafka topics and event payloads the service
// publishes and consumes. Payloads travel inside a CloudEvent envelope.
package events

import "github.com/google/uuid"

// Source identifies this service in CloudEvent envelopes.
const Source = "service-boarding"

// Topics.
const (
	TopicNotificationEvents = "notification.events"
	TopicPaymentEvents      = "payment.events"
)

// Event types published to the notification topic.
const (
	TypeBookingRequested = "booking.requested"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingRejected  = "booking.rejected"
	TypeBookingCancelled = "booking.cancelled"
	TypeEmailRequested   = "email.requested"
	TypeLoyaltyUpgraded  = "loyalty.upgraded"
)

// Event types consumed from the payment topic.
const (
	TypePaymentCaptured = "payment.captured"
)

// BookingEvent notifies about a booking lifecycle change.
type BookingEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	ClientID    uuid.UUID `json:"client_id"`
	ServiceType string    `json:"service_type"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"total_cents"`
	Currency    string    `json:"currency"`
	Reason      string    `json:"reason,omitempty"`
}

// EmailEvent asks the notification service to send a templated email.
type EmailEvent struct {
	ClientID  uuid.UUID         `json:"client_id"`
	Email     string            `json:"email"`
	Language  string            `json:"language"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables,omitempty"`
}

// LoyaltyEvent notifies a client that their loyalty tier went up.
type LoyaltyEvent struct {
	ClientID uuid.UUID `json:"client_id"`
	OldTier  string    `json:"old_tier"`
	NewTier  string    `json:"new_tier"`
}

// PaymentCapturedEvent reports a successful payment against an invoice.
type PaymentCapturedEvent struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	ClientID      uuid.UUID `json:"client_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	ProviderRef   string    `json:"provider_ref,omitempty"`
}
