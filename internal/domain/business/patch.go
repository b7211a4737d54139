package business

import (
	"time"

	"github.com/rentstack/rentstack/internal/domain/payment"
	"github.com/rentstack/rentstack/internal/types"
)

// Patch is the set of field changes an engine operation returns for the
// caller to persist. Nil pointers mean "leave unchanged"; the Clear flags
// express "set to null", which a nil pointer cannot.
type Patch struct {
	SubscriptionTier         *types.SubscriptionTier
	BillingInterval          *types.BillingInterval
	AvailableUserCount       *int
	StorefrontIncluded       *bool
	Status                   *types.BusinessStatus
	DowngradeRequestedAt     *time.Time
	ClearDowngradeRequest    bool
	CancellationRequestedAt  *time.Time
	ClearCancellation        bool
	CreditCard               *payment.CreditCard
	BankAccount              *payment.BankAccount
	GatewaySubscriptionToken *string
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p == Patch{}
}

// Apply returns a copy of the business with the patch applied. The snapshot
// passed in is never mutated.
func (p Patch) Apply(b *Business) *Business {
	next := *b
	if p.SubscriptionTier != nil {
		next.SubscriptionTier = *p.SubscriptionTier
	}
	if p.BillingInterval != nil {
		next.BillingInterval = *p.BillingInterval
	}
	if p.AvailableUserCount != nil {
		next.AvailableUserCount = *p.AvailableUserCount
	}
	if p.StorefrontIncluded != nil {
		next.StorefrontIncluded = *p.StorefrontIncluded
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.DowngradeRequestedAt != nil {
		next.DowngradeRequestedAt = p.DowngradeRequestedAt
	}
	if p.ClearDowngradeRequest {
		next.DowngradeRequestedAt = nil
	}
	if p.CancellationRequestedAt != nil {
		next.CancellationRequestedAt = p.CancellationRequestedAt
	}
	if p.ClearCancellation {
		next.CancellationRequestedAt = nil
	}
	if p.CreditCard != nil {
		card := *p.CreditCard
		next.CreditCard = &card
	}
	if p.BankAccount != nil {
		bank := *p.BankAccount
		next.BankAccount = &bank
	}
	if p.GatewaySubscriptionToken != nil {
		next.GatewaySubscriptionToken = *p.GatewaySubscriptionToken
	}
	return &next
}
