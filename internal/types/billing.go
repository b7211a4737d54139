package types

import (
	ierr "github.com/rentstack/rentstack/internal/errors"
)

// BillingInterval represents how often a subscription is billed
type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

// Validate validates the billing interval
func (i BillingInterval) Validate() error {
	switch i {
	case BillingIntervalMonthly, BillingIntervalYearly:
		return nil
	default:
		return ierr.NewError("invalid billing interval").
			WithHint("Billing interval must be monthly or yearly").
			WithReportableDetails(map[string]any{
				"allowed": []BillingInterval{
					BillingIntervalMonthly,
					BillingIntervalYearly,
				},
			}).
			Mark(ierr.ErrValidation)
	}
}

// String returns the string representation of the billing interval
func (i BillingInterval) String() string {
	return string(i)
}
