package types

import (
	"strings"

	ierr "github.com/rentstack/rentstack/internal/errors"
)

// SubscriptionTier is a named subscription plan level. Tier behavior
// (pricing, multilocation eligibility, seat-count rules) lives in the tier
// catalog; this type only names the level.
type SubscriptionTier string

const (
	TierLite     SubscriptionTier = "lite"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
	TierCustom   SubscriptionTier = "custom"
)

// Validate validates the subscription tier
func (t SubscriptionTier) Validate() error {
	switch t {
	case TierLite, TierStandard, TierPremium, TierCustom:
		return nil
	default:
		return ierr.NewError("invalid subscription tier").
			WithHint("Please provide a valid subscription tier").
			WithReportableDetails(map[string]any{
				"allowed": []SubscriptionTier{
					TierLite,
					TierStandard,
					TierPremium,
					TierCustom,
				},
			}).
			Mark(ierr.ErrValidation)
	}
}

// String returns the string representation of the subscription tier
func (t SubscriptionTier) String() string {
	return string(t)
}

// Display returns the capitalized form used in billing notes, e.g. "Lite".
func (t SubscriptionTier) Display() string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
