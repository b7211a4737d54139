// Package publisher emits billing and change-history events to the
// notification/audit sink.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rentstack/rentstack/internal/config"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/pubsub"
	"github.com/rentstack/rentstack/internal/types"
)

// BillingEventPublisher produces billing events for downstream consumers
// (mailers, change history, operational alerting). Publishing is best
// effort: a failed publish is logged, never surfaced to the billing caller.
type BillingEventPublisher interface {
	Publish(ctx context.Context, name types.BillingEventName, businessID string, payload any)
	Close() error
}

type billingEventPublisher struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	logger *logger.Logger
}

// NewPublisher creates a billing event publisher over the configured pubsub.
func NewPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) BillingEventPublisher {
	return &billingEventPublisher{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}
}

func (p *billingEventPublisher) Publish(ctx context.Context, name types.BillingEventName, businessID string, payload any) {
	event := &types.BillingEvent{
		ID:         types.GenerateUUIDWithPrefix("evt"),
		EventName:  name,
		BusinessID: businessID,
		Timestamp:  time.Now().UTC(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			p.logger.Errorw("failed to marshal billing event payload",
				"event_name", name,
				"business_id", businessID,
				"error", err)
			return
		}
		event.Payload = raw
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorw("failed to marshal billing event",
			"event_name", name,
			"business_id", businessID,
			"error", err)
		return
	}

	msg := message.NewMessage(event.ID, body)
	msg.Metadata.Set("business_id", businessID)
	msg.Metadata.Set("event_name", name.String())

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish billing event",
			"event_id", event.ID,
			"event_name", name,
			"business_id", businessID,
			"error", err)
		return
	}

	p.logger.Debugw("published billing event",
		"event_id", event.ID,
		"event_name", name,
		"business_id", businessID,
		"topic", p.config.Topic)
}

func (p *billingEventPublisher) Close() error {
	return p.pubSub.Close()
}
