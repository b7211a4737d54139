package service

import (
	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/types"
)

// Notification is a billing event the caller fires after the transition has
// been persisted. The engine never publishes customer facing notifications
// itself so that a failed write cannot leave phantom emails behind.
type Notification struct {
	Name    types.BillingEventName
	Payload map[string]any
}

// TransitionResult is the outcome of a subscription transition. The patch
// carries every field the transition wants changed and nothing else, the
// caller applies it, persists the business and then fires the notifications.
type TransitionResult struct {
	Patch         business.Patch
	BillingNote   string
	Notifications []Notification
}

func changeHistory(note string, actor types.Actor) Notification {
	return Notification{
		Name: types.EventChangeHistory,
		Payload: map[string]any{
			"reference":     types.GenerateShortIDWithPrefix("CH_"),
			"message":       note,
			"employee_id":   actor.EmployeeID,
			"employee_name": actor.Name,
		},
	}
}
