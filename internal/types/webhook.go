package types

import (
	"encoding/json"
	"time"
)

// BillingEventName identifies a billing or audit event published to the
// notification sink.
type BillingEventName string

const (
	// Customer-facing notifications (rendered by the mailer service)
	EventSubscriptionUpgraded  BillingEventName = "business.subscription_upgraded"
	EventDowngradeRequested    BillingEventName = "business.downgrade_requested"
	EventCancellationRequested BillingEventName = "business.cancellation_requested"

	// Internal notifications
	EventCancellationReceived BillingEventName = "business.cancellation_received"
	EventChangeHistory        BillingEventName = "business.change_history"
	EventGatewayIncident      BillingEventName = "billing.gateway_incident"
)

// String returns the string representation of the billing event name
func (n BillingEventName) String() string {
	return string(n)
}

// BillingEvent is the envelope published to the notification/audit sink.
// Delivery is best effort; the engine never blocks a billing mutation on it.
type BillingEvent struct {
	ID         string           `json:"id"`
	EventName  BillingEventName `json:"event_name"`
	BusinessID string           `json:"business_id"`
	Timestamp  time.Time        `json:"timestamp"`
	Payload    json.RawMessage  `json:"payload,omitempty"`
}
