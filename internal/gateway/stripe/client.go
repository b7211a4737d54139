// Package stripe implements the payment gateway façade over the Stripe API.
package stripe

import (
	"github.com/rentstack/rentstack/internal/config"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client implements gateway.Gateway against the Stripe API. It performs no
// retries; retry policy belongs to callers.
type Client struct {
	api    *stripe.Client
	cfg    *config.StripeConfig
	logger *logger.Logger
}

// NewGateway creates a Stripe-backed gateway client. A missing secret key is
// not an error here; it surfaces as a gateway authentication failure on the
// first remote call.
func NewGateway(cfg *config.Configuration, logger *logger.Logger) gateway.Gateway {
	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, nil),
		cfg:    &cfg.Stripe,
		logger: logger,
	}
}
