package stripe

import (
	"net/http"

	"github.com/cockroachdb/errors"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/stripe/stripe-go/v82"
)

// wrapErr maps a Stripe client error onto the closed gateway taxonomy.
// Card errors and invalid requests carry the processor's message through as
// the user-facing hint; everything else gets a generic retry-later hint so
// internals never leak to the customer.
func wrapErr(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
			return ierr.WithError(err).
				WithMessage(op + ": rate limited by stripe").
				WithHint("Oops! An error occurred during the process. Please try again later.").
				Mark(ierr.ErrGatewayTransient)
		case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
			return ierr.WithError(err).
				WithMessage(op + ": stripe authentication failed").
				WithHint("Oops! An error occurred during the process. Please try again later.").
				Mark(ierr.ErrGatewayAuth)
		case stripeErr.Type == stripe.ErrorTypeCard, stripeErr.Type == stripe.ErrorTypeInvalidRequest:
			return ierr.WithError(err).
				WithMessage(op + ": stripe rejected the request").
				WithHint(stripeErr.Msg).
				WithReportableDetails(map[string]any{
					"code": string(stripeErr.Code),
				}).
				Mark(ierr.ErrGatewayDeclined)
		default:
			return ierr.WithError(err).
				WithMessage(op + ": stripe api error").
				WithHint("Oops! An error occurred during the process. Please try again later.").
				Mark(ierr.ErrGatewayTransient)
		}
	}

	// No structured Stripe error means the round trip itself failed
	return ierr.WithError(err).
		WithMessage(op + ": stripe unreachable").
		WithHint("Oops! An error occurred during the process. Please try again later.").
		Mark(ierr.ErrGatewayTransient)
}
