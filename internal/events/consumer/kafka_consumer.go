package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/application"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
)

// PaymentEventConsumer listens to the payment topic and settles invoices when
// the external gateway reports a captured payment.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.InvoiceService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.InvoiceService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.TypePaymentCaptured:
		return c.handlePaymentCaptured(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCaptured(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentCapturedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCapturedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment captured event",
		zap.String("invoice_id", evt.InvoiceID.String()),
		zap.String("payment_method", evt.PaymentMethod),
	)

	_, err := c.service.MarkPaid(ctx, evt.ClientID, domain.RoleClient, evt.InvoiceID, evt.PaymentMethod)
	if err != nil {
		// A duplicate delivery lands on an already-paid invoice; commit it.
		if code, ok := domain.CodeOf(err); ok && code == domain.CodeInvalidState {
			c.logger.Warn("invoice not pending, skipping payment event",
				zap.String("invoice_id", evt.InvoiceID.String()),
			)
			return nil
		}
		c.logger.Error("failed to mark invoice paid after payment capture",
			zap.String("invoice_id", evt.InvoiceID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("invoice paid after payment capture",
		zap.String("invoice_id", evt.InvoiceID.String()),
	)
	return nil
}
