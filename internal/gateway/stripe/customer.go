package stripe

import (
	"context"
	"strconv"

	"github.com/rentstack/rentstack/internal/domain/payment"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/stripe/stripe-go/v82"
)

// RetrieveCustomer looks up the Stripe customer for a stored token.
func (c *Client) RetrieveCustomer(ctx context.Context, token string) (*gateway.Customer, error) {
	cust, err := c.api.V1Customers.Retrieve(ctx, token, &stripe.CustomerRetrieveParams{})
	if err != nil {
		return nil, wrapErr(err, "retrieve customer")
	}

	result := &gateway.Customer{
		ID:    cust.ID,
		Email: cust.Email,
	}
	if cust.InvoiceSettings != nil && cust.InvoiceSettings.DefaultPaymentMethod != nil {
		result.DefaultSourceID = cust.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return result, nil
}

// CreateCardToken converts validated card details into a single-use token.
// When the billing form already tokenized the card client-side, that token
// is passed through untouched.
func (c *Client) CreateCardToken(ctx context.Context, card payment.CardInput) (string, error) {
	if card.Token != "" {
		return card.Token, nil
	}

	params := &stripe.TokenCreateParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(strconv.Itoa(card.ExpMonth)),
			ExpYear:  stripe.String(strconv.Itoa(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
			Name:     stripe.String(card.Name),
		},
	}
	if card.StreetAddress1 != "" {
		params.Card.AddressLine1 = stripe.String(card.StreetAddress1)
		params.Card.AddressLine2 = stripe.String(card.StreetAddress2)
		params.Card.AddressCity = stripe.String(card.City)
		params.Card.AddressState = stripe.String(card.Locale)
		params.Card.AddressZip = stripe.String(card.PostalCode)
		params.Card.AddressCountry = stripe.String(card.Country)
	}

	tok, err := c.api.V1Tokens.Create(ctx, params)
	if err != nil {
		return "", wrapErr(err, "create card token")
	}
	return tok.ID, nil
}

// AttachCardSource attaches a tokenized card to the customer and makes it
// the default funding source.
func (c *Client) AttachCardSource(ctx context.Context, customer *gateway.Customer, cardToken string) (*gateway.Source, error) {
	pm, err := c.api.V1PaymentMethods.Create(ctx, &stripe.PaymentMethodCreateParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCreateCardParams{
			Token: stripe.String(cardToken),
		},
	})
	if err != nil {
		return nil, wrapErr(err, "create card payment method")
	}

	pm, err = c.api.V1PaymentMethods.Attach(ctx, pm.ID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customer.ID),
	})
	if err != nil {
		return nil, wrapErr(err, "attach card")
	}

	if err := c.setDefaultSource(ctx, customer.ID, pm.ID); err != nil {
		return nil, err
	}
	return cardSourceFromPaymentMethod(pm), nil
}

// ReplaceCardSource swaps the customer's stored card in place: the new card
// is attached and made default, then the previous default is detached so
// duplicates never accumulate.
func (c *Client) ReplaceCardSource(ctx context.Context, customer *gateway.Customer, cardToken string) (*gateway.Source, error) {
	oldSourceID := customer.DefaultSourceID

	source, err := c.AttachCardSource(ctx, customer, cardToken)
	if err != nil {
		return nil, err
	}

	if oldSourceID != "" && oldSourceID != source.ID {
		if _, err := c.api.V1PaymentMethods.Detach(ctx, oldSourceID, &stripe.PaymentMethodDetachParams{}); err != nil {
			// The replacement already took effect; a stale detached-card
			// failure is an operational concern, not a caller failure.
			c.logger.Warnw("failed to detach replaced card",
				"customer_id", customer.ID,
				"payment_method_id", oldSourceID,
				"error", err)
		}
	}
	return source, nil
}

// CreateBankSource creates an unattached bank payment method from resolved
// account details.
func (c *Client) CreateBankSource(ctx context.Context, details gateway.BankDetails) (*gateway.Source, error) {
	pm, err := c.api.V1PaymentMethods.Create(ctx, &stripe.PaymentMethodCreateParams{
		Type: stripe.String("us_bank_account"),
		USBankAccount: &stripe.PaymentMethodCreateUSBankAccountParams{
			AccountNumber:     stripe.String(details.AccountNumber),
			RoutingNumber:     stripe.String(details.RoutingNumber),
			AccountHolderType: stripe.String("company"),
		},
		BillingDetails: &stripe.PaymentMethodCreateBillingDetailsParams{
			Name: stripe.String(details.AccountHolder),
		},
	})
	if err != nil {
		return nil, wrapErr(err, "create bank payment method")
	}
	return bankSourceFromPaymentMethod(pm), nil
}

// FindBankSource returns the customer's stored bank source matching the
// fingerprint.
func (c *Client) FindBankSource(ctx context.Context, customer *gateway.Customer, fingerprint string) (*gateway.Source, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customer.ID),
		Type:     stripe.String("us_bank_account"),
	}

	for pm, err := range c.api.V1PaymentMethods.List(ctx, params) {
		if err != nil {
			return nil, wrapErr(err, "list bank payment methods")
		}
		if pm.USBankAccount != nil && pm.USBankAccount.Fingerprint == fingerprint {
			return bankSourceFromPaymentMethod(pm), nil
		}
	}

	return nil, ierr.NewError("bank source not found").
		WithHint("No matching bank account on file").
		Mark(ierr.ErrNotFound)
}

// AttachBankSource attaches a previously created bank source to the
// customer.
func (c *Client) AttachBankSource(ctx context.Context, customer *gateway.Customer, sourceID string) (*gateway.Source, error) {
	pm, err := c.api.V1PaymentMethods.Attach(ctx, sourceID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customer.ID),
	})
	if err != nil {
		return nil, wrapErr(err, "attach bank source")
	}
	return bankSourceFromPaymentMethod(pm), nil
}

func (c *Client) setDefaultSource(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := c.api.V1Customers.Update(ctx, customerID, &stripe.CustomerUpdateParams{
		InvoiceSettings: &stripe.CustomerUpdateInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		return wrapErr(err, "set default source")
	}
	return nil
}

func cardSourceFromPaymentMethod(pm *stripe.PaymentMethod) *gateway.Source {
	source := &gateway.Source{
		ID:   pm.ID,
		Kind: gateway.SourceKindCard,
	}
	if pm.Card != nil {
		source.Brand = string(pm.Card.Brand)
		source.Last4 = pm.Card.Last4
		source.ExpMonth = int(pm.Card.ExpMonth)
		source.ExpYear = int(pm.Card.ExpYear)
		source.Fingerprint = pm.Card.Fingerprint
	}
	return source
}

func bankSourceFromPaymentMethod(pm *stripe.PaymentMethod) *gateway.Source {
	source := &gateway.Source{
		ID:   pm.ID,
		Kind: gateway.SourceKindBank,
	}
	if pm.USBankAccount != nil {
		source.Last4 = pm.USBankAccount.Last4
		source.Fingerprint = pm.USBankAccount.Fingerprint
		source.BankName = pm.USBankAccount.BankName
	}
	return source
}
