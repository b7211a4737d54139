package tier

import (
	"github.com/rentstack/rentstack/internal/config"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/shopspring/decimal"
)

// Definition holds the plan metadata for one subscription tier. Definitions
// are loaded once at startup and read-only thereafter; the transition engine
// consults them instead of branching on tier names.
type Definition struct {
	ID                    types.SubscriptionTier
	MonthlyPrice          decimal.Decimal
	YearlyPrice           decimal.Decimal
	PerUserPrice          decimal.Decimal
	MultilocationEligible bool
	Custom                bool
}

// Amount returns the recurring charge for the given interval and seat count.
func (d Definition) Amount(interval types.BillingInterval, userCount int) decimal.Decimal {
	base := d.MonthlyPrice
	if interval == types.BillingIntervalYearly {
		base = d.YearlyPrice
	}
	return base.Add(d.PerUserPrice.Mul(decimal.NewFromInt(int64(userCount))))
}

// Catalog is the static tier → definition mapping.
type Catalog struct {
	defs map[types.SubscriptionTier]Definition
}

// NewCatalog builds the catalog from config overrides, falling back to the
// built-in definitions when no tiers are configured.
func NewCatalog(cfg *config.Configuration) (*Catalog, error) {
	defs := defaultDefinitions()
	if len(cfg.Billing.Tiers) > 0 {
		defs = make([]Definition, 0, len(cfg.Billing.Tiers))
		for _, tc := range cfg.Billing.Tiers {
			id := types.SubscriptionTier(tc.ID)
			if err := id.Validate(); err != nil {
				return nil, err
			}
			defs = append(defs, Definition{
				ID:                    id,
				MonthlyPrice:          decimal.NewFromFloat(tc.MonthlyPrice),
				YearlyPrice:           decimal.NewFromFloat(tc.YearlyPrice),
				PerUserPrice:          decimal.NewFromFloat(tc.PerUserPrice),
				MultilocationEligible: tc.MultilocationEligible,
				Custom:                tc.Custom,
			})
		}
	}

	byID := make(map[types.SubscriptionTier]Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	return &Catalog{defs: byID}, nil
}

// Lookup returns the definition for a tier identifier.
func (c *Catalog) Lookup(id types.SubscriptionTier) (Definition, error) {
	def, ok := c.defs[id]
	if !ok {
		return Definition{}, ierr.NewError("unknown subscription tier").
			WithHintf("Subscription tier %s does not exist", id).
			WithReportableDetails(map[string]any{
				"subscription_tier": id,
			}).
			Mark(ierr.ErrValidation)
	}
	return def, nil
}

func defaultDefinitions() []Definition {
	return []Definition{
		{
			ID:           types.TierLite,
			MonthlyPrice: decimal.NewFromInt(29),
			YearlyPrice:  decimal.NewFromInt(290),
			PerUserPrice: decimal.NewFromInt(5),
		},
		{
			ID:                    types.TierStandard,
			MonthlyPrice:          decimal.NewFromInt(59),
			YearlyPrice:           decimal.NewFromInt(590),
			PerUserPrice:          decimal.NewFromInt(8),
			MultilocationEligible: true,
		},
		{
			ID:                    types.TierPremium,
			MonthlyPrice:          decimal.NewFromInt(99),
			YearlyPrice:           decimal.NewFromInt(990),
			PerUserPrice:          decimal.NewFromInt(10),
			MultilocationEligible: true,
		},
		{
			ID:                    types.TierCustom,
			PerUserPrice:          decimal.NewFromInt(12),
			MultilocationEligible: true,
			Custom:                true,
		},
	}
}
