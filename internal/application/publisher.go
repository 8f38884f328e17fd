package application

import (
	"context"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
)

// EventPublisher abstracts the kafka producer so services can be unit tested
// without a broker. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}
