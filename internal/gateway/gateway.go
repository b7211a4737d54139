// Package gateway defines the typed façade the billing engine requires from
// the external payment processor. Implementations perform synchronous remote
// calls, never retry, and fail with exactly one of the gateway sentinels in
// internal/errors.
package gateway

import (
	"context"
	"time"

	"github.com/rentstack/rentstack/internal/domain/payment"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/shopspring/decimal"
)

// Customer is the processor-side customer record.
type Customer struct {
	ID              string
	Email           string
	DefaultSourceID string
}

// SourceKind distinguishes stored card and bank sources.
type SourceKind string

const (
	SourceKindCard SourceKind = "card"
	SourceKindBank SourceKind = "bank"
)

// Source is a processor-side token representing a stored card or bank
// account.
type Source struct {
	ID          string
	Kind        SourceKind
	Brand       string
	Last4       string
	ExpMonth    int
	ExpYear     int
	Fingerprint string
	BankName    string
}

// Subscription is the processor-side recurring subscription record.
type Subscription struct {
	ID     string
	Status string
}

// PlanContext carries everything the processor needs to price a
// subscription: the tier, the cycle, the seat count and the computed amount.
type PlanContext struct {
	BusinessID         string
	Tier               types.SubscriptionTier
	Interval           types.BillingInterval
	UserCount          int
	Amount             decimal.Decimal
	StorefrontIncluded bool
}

// ProrationQuote is the ephemeral result of a proration preview. It is
// returned to the caller and never persisted.
type ProrationQuote struct {
	AmountDue   decimal.Decimal `json:"amount_due"`
	Currency    string          `json:"currency"`
	EffectiveAt time.Time       `json:"effective_at"`
}

// BankDetails are the attachable bank account details resolved from a bank
// link token.
type BankDetails struct {
	AccountHolder string
	AccountNumber string
	RoutingNumber string
}

// Gateway is the payment processor client contract. All operations block for
// the remote round trip; callers apply timeouts via ctx and treat a timeout
// as a transient gateway failure.
type Gateway interface {
	// RetrieveCustomer looks up the processor customer by token.
	RetrieveCustomer(ctx context.Context, token string) (*Customer, error)

	// CreateCardToken converts validated card details into a single-use
	// payment token.
	CreateCardToken(ctx context.Context, card payment.CardInput) (string, error)

	// AttachCardSource attaches a tokenized card as the customer's default
	// funding source.
	AttachCardSource(ctx context.Context, customer *Customer, cardToken string) (*Source, error)

	// ReplaceCardSource swaps the customer's stored card for the tokenized
	// one, in place rather than accumulating duplicates.
	ReplaceCardSource(ctx context.Context, customer *Customer, cardToken string) (*Source, error)

	// CreateBankSource creates an unattached bank source from resolved
	// account details. The returned source carries the fingerprint used for
	// duplicate detection.
	CreateBankSource(ctx context.Context, details BankDetails) (*Source, error)

	// FindBankSource returns the customer's stored bank source matching the
	// fingerprint, or a not-found error.
	FindBankSource(ctx context.Context, customer *Customer, fingerprint string) (*Source, error)

	// AttachBankSource attaches a previously created bank source to the
	// customer.
	AttachBankSource(ctx context.Context, customer *Customer, sourceID string) (*Source, error)

	// CreateSubscription starts the recurring subscription for a customer
	// that just gained its first funding source.
	CreateSubscription(ctx context.Context, customer *Customer, plan PlanContext) (*Subscription, error)

	// UpdateSubscription reprices an existing subscription. The note becomes
	// part of the processor-side record, not just a log line.
	UpdateSubscription(ctx context.Context, customer *Customer, subscriptionToken string, plan PlanContext, note string, prorate bool) (*Subscription, error)

	// PreviewProration computes the prorated charge or credit the plan
	// change would produce, without applying it.
	PreviewProration(ctx context.Context, customer *Customer, subscriptionToken string, plan PlanContext) (*ProrationQuote, error)
}

// BankLinkConverter resolves a bank-link provider token into attachable bank
// account details.
type BankLinkConverter interface {
	ResolveBankAccount(ctx context.Context, linkToken string, accountID string) (*BankDetails, error)
}
