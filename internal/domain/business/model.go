package business

import (
	"time"

	"github.com/rentstack/rentstack/internal/domain/payment"
	"github.com/rentstack/rentstack/internal/types"
)

// Business is the aggregate the billing engine reads and patches. The engine
// only ever works against a snapshot; persistence belongs to the caller.
type Business struct {
	// ID is the unique identifier for the business
	ID string `db:"id" json:"id"`

	// Name is the display name of the business
	Name string `db:"name" json:"name"`

	// Email is the billing contact address
	Email string `db:"email" json:"email"`

	// Status tracks whether the account is active or deactivated
	Status types.BusinessStatus `db:"status" json:"status"`

	// SubscriptionTier is the current plan level
	SubscriptionTier types.SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`

	// BillingInterval is the current billing cycle
	BillingInterval types.BillingInterval `db:"billing_interval" json:"billing_interval"`

	// AvailableUserCount is the number of paid seats on the subscription
	AvailableUserCount int `db:"available_user_count" json:"available_user_count"`

	// PaidEmployeesCount is the number of employees currently occupying a
	// paid seat. Derived from membership data owned outside this core.
	PaidEmployeesCount int `db:"paid_employees_count" json:"paid_employees_count"`

	// LocationCount is the number of locations the business operates
	LocationCount int `db:"location_count" json:"location_count"`

	// StorefrontIncluded reports whether the Storefront+ add-on is enabled
	StorefrontIncluded bool `db:"storefront_included" json:"storefront_included"`

	// DowngradeRequestedAt records a pending downgrade request. The
	// downgrade itself is applied later by a separate process.
	DowngradeRequestedAt *time.Time `db:"downgrade_requested_at" json:"downgrade_requested_at"`

	// CancellationRequestedAt records a pending cancellation request
	CancellationRequestedAt *time.Time `db:"cancellation_requested_at" json:"cancellation_requested_at"`

	// GatewayCustomerToken is the payment processor customer reference.
	// Required before any payment-method or subscription operation.
	GatewayCustomerToken string `db:"gateway_customer_token" json:"gateway_customer_token"`

	// GatewaySubscriptionToken is the payment processor subscription
	// reference, set when the first payment source is attached.
	GatewaySubscriptionToken string `db:"gateway_subscription_token" json:"gateway_subscription_token"`

	// CreditCard is the stored card projection, at most one per business
	CreditCard *payment.CreditCard `json:"credit_card"`

	// BankAccount is the stored bank source projection
	BankAccount *payment.BankAccount `json:"bank_account"`

	// Version is the optimistic concurrency check for patch persistence
	Version int64 `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MultiLocation reports whether the business serves more than one location.
func (b *Business) MultiLocation() bool {
	return b.LocationCount > 1
}

// HasGatewayCustomer reports whether the business has a payment processor
// customer record.
func (b *Business) HasGatewayCustomer() bool {
	return b.GatewayCustomerToken != ""
}

// HasCreditCard reports whether a card is on file.
func (b *Business) HasCreditCard() bool {
	return b.CreditCard != nil && b.CreditCard.Token != ""
}

// HasPaymentSource reports whether any funding source is on file.
func (b *Business) HasPaymentSource() bool {
	return b.HasCreditCard() || (b.BankAccount != nil && b.BankAccount.Token != "")
}
