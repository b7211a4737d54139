package stripe

import (
	"context"
	"strconv"
	"time"

	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

const defaultCurrency = "usd"

// CreateSubscription starts the recurring subscription for a customer that
// just gained its first funding source.
func (c *Client) CreateSubscription(ctx context.Context, customer *gateway.Customer, plan gateway.PlanContext) (*gateway.Subscription, error) {
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(customer.ID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				PriceData: &stripe.SubscriptionCreateItemPriceDataParams{
					Currency:   stripe.String(c.currency()),
					Product:    stripe.String(c.cfg.ProductID),
					UnitAmount: stripe.Int64(amountInCents(plan)),
					Recurring: &stripe.SubscriptionCreateItemPriceDataRecurringParams{
						Interval: stripe.String(stripeInterval(plan.Interval)),
					},
				},
			},
		},
		Metadata: planMetadata(plan),
	}

	sub, err := c.api.V1Subscriptions.Create(ctx, params)
	if err != nil {
		return nil, wrapErr(err, "create subscription")
	}

	c.logger.Infow("created stripe subscription",
		"business_id", plan.BusinessID,
		"subscription_id", sub.ID,
		"subscription_tier", plan.Tier,
		"billing_interval", plan.Interval)

	return &gateway.Subscription{ID: sub.ID, Status: string(sub.Status)}, nil
}

// UpdateSubscription reprices the existing subscription. The billing note
// becomes part of the Stripe record via the subscription description and
// metadata.
func (c *Client) UpdateSubscription(ctx context.Context, customer *gateway.Customer, subscriptionToken string, plan gateway.PlanContext, note string, prorate bool) (*gateway.Subscription, error) {
	if subscriptionToken == "" {
		return nil, ierr.NewError("business has no gateway subscription").
			WithHint("A payment method must be added before changing the subscription").
			Mark(ierr.ErrGatewayNotConfigured)
	}

	current, err := c.api.V1Subscriptions.Retrieve(ctx, subscriptionToken, &stripe.SubscriptionRetrieveParams{})
	if err != nil {
		return nil, wrapErr(err, "retrieve subscription")
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, ierr.NewError("stripe subscription has no items").
			WithHint("Oops! An error occurred during the process. Please try again later.").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionToken,
			}).
			Mark(ierr.ErrGatewayDeclined)
	}

	prorationBehavior := "none"
	if prorate {
		prorationBehavior = "create_prorations"
	}

	metadata := planMetadata(plan)
	params := &stripe.SubscriptionUpdateParams{
		ProrationBehavior: stripe.String(prorationBehavior),
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID: stripe.String(current.Items.Data[0].ID),
				PriceData: &stripe.SubscriptionUpdateItemPriceDataParams{
					Currency:   stripe.String(c.currency()),
					Product:    stripe.String(c.cfg.ProductID),
					UnitAmount: stripe.Int64(amountInCents(plan)),
					Recurring: &stripe.SubscriptionUpdateItemPriceDataRecurringParams{
						Interval: stripe.String(stripeInterval(plan.Interval)),
					},
				},
			},
		},
		Metadata: metadata,
	}
	if note != "" {
		params.Description = stripe.String(note)
		metadata["billing_note"] = note
	}

	sub, err := c.api.V1Subscriptions.Update(ctx, subscriptionToken, params)
	if err != nil {
		return nil, wrapErr(err, "update subscription")
	}

	c.logger.Infow("updated stripe subscription",
		"business_id", plan.BusinessID,
		"subscription_id", sub.ID,
		"subscription_tier", plan.Tier,
		"billing_interval", plan.Interval,
		"billing_note", note)

	return &gateway.Subscription{ID: sub.ID, Status: string(sub.Status)}, nil
}

// PreviewProration computes the prorated charge or credit the plan change
// would produce, without applying anything.
func (c *Client) PreviewProration(ctx context.Context, customer *gateway.Customer, subscriptionToken string, plan gateway.PlanContext) (*gateway.ProrationQuote, error) {
	if subscriptionToken == "" {
		return nil, ierr.NewError("business has no gateway subscription").
			WithHint("A payment method must be added before previewing changes").
			Mark(ierr.ErrGatewayNotConfigured)
	}

	current, err := c.api.V1Subscriptions.Retrieve(ctx, subscriptionToken, &stripe.SubscriptionRetrieveParams{})
	if err != nil {
		return nil, wrapErr(err, "retrieve subscription")
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, ierr.NewError("stripe subscription has no items").
			WithHint("Oops! An error occurred during the process. Please try again later.").
			Mark(ierr.ErrGatewayDeclined)
	}

	params := &stripe.InvoiceCreatePreviewParams{
		Customer:     stripe.String(customer.ID),
		Subscription: stripe.String(subscriptionToken),
		SubscriptionDetails: &stripe.InvoiceCreatePreviewSubscriptionDetailsParams{
			ProrationBehavior: stripe.String("create_prorations"),
			Items: []*stripe.InvoiceCreatePreviewSubscriptionDetailsItemParams{
				{
					ID: stripe.String(current.Items.Data[0].ID),
					PriceData: &stripe.InvoiceCreatePreviewSubscriptionDetailsItemPriceDataParams{
						Currency:   stripe.String(c.currency()),
						Product:    stripe.String(c.cfg.ProductID),
						UnitAmount: stripe.Int64(amountInCents(plan)),
						Recurring: &stripe.InvoiceCreatePreviewSubscriptionDetailsItemPriceDataRecurringParams{
							Interval: stripe.String(stripeInterval(plan.Interval)),
						},
					},
				},
			},
		},
	}

	preview, err := c.api.V1Invoices.CreatePreview(ctx, params)
	if err != nil {
		return nil, wrapErr(err, "preview proration")
	}

	return &gateway.ProrationQuote{
		AmountDue:   centsToDecimal(preview.AmountDue),
		Currency:    string(preview.Currency),
		EffectiveAt: time.Unix(preview.Created, 0).UTC(),
	}, nil
}

func (c *Client) currency() string {
	if c.cfg.Currency != "" {
		return c.cfg.Currency
	}
	return defaultCurrency
}

func stripeInterval(interval types.BillingInterval) string {
	if interval == types.BillingIntervalYearly {
		return "year"
	}
	return "month"
}

func amountInCents(plan gateway.PlanContext) int64 {
	return plan.Amount.Shift(2).Round(0).IntPart()
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

func planMetadata(plan gateway.PlanContext) map[string]string {
	return map[string]string{
		"rentstack_business_id": plan.BusinessID,
		"subscription_tier":     plan.Tier.String(),
		"billing_interval":      plan.Interval.String(),
		"available_user_count":  strconv.Itoa(plan.UserCount),
		"storefront_included":   strconv.FormatBool(plan.StorefrontIncluded),
	}
}
