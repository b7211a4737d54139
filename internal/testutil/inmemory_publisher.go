package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rentstack/rentstack/internal/types"
	"github.com/rentstack/rentstack/internal/webhook/publisher"
)

var _ publisher.BillingEventPublisher = (*InMemoryEventPublisher)(nil)

// RecordedEvent is a billing event captured by the in-memory publisher
type RecordedEvent struct {
	Name       types.BillingEventName
	BusinessID string
	Payload    map[string]any
}

// InMemoryEventPublisher records billing events instead of publishing them
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// NewInMemoryEventPublisher creates a new InMemoryEventPublisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, name types.BillingEventName, businessID string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	evt := RecordedEvent{Name: name, BusinessID: businessID}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			_ = json.Unmarshal(raw, &evt.Payload)
		}
	}
	p.events = append(p.events, evt)
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns all recorded events
func (p *InMemoryEventPublisher) Events() []RecordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RecordedEvent(nil), p.events...)
}

// EventsNamed returns the recorded events with the given name
func (p *InMemoryEventPublisher) EventsNamed(name types.BillingEventName) []RecordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	matched := make([]RecordedEvent, 0)
	for _, e := range p.events {
		if e.Name == name {
			matched = append(matched, e)
		}
	}
	return matched
}

// Clear removes all recorded events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
