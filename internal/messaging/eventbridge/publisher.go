// Package eventbridge publishes ledger domain events to AWS EventBridge.
package eventbridge

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/messaging"
)

// Publisher implements messaging.Publisher on AWS EventBridge.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	source       string
	logger       *zap.Logger
}

// NewPublisher creates an EventBridge publisher.
func NewPublisher(client *eventbridge.Client, eventBusName, source string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       source,
		logger:       logger,
	}
}

var _ messaging.Publisher = (*Publisher)(nil)

// Publish sends a single event. Failures are logged and swallowed: events are
// a side channel and must never fail the mutation that produced them.
func (p *Publisher) Publish(ctx context.Context, event messaging.Event) {
	detail, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal domain event",
			zap.String("kind", event.Kind), zap.Error(err))
		return
	}

	_, err = p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(p.source),
				DetailType:   aws.String(event.Kind),
				Detail:       aws.String(string(detail)),
			},
		},
	})
	if err != nil {
		p.logger.Warn("failed to publish domain event",
			zap.String("kind", event.Kind),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}
