package payment

import (
	"time"

	ierr "github.com/rentstack/rentstack/internal/errors"
)

// CreditCard is the locally persisted projection of a card stored at the
// payment gateway. The raw card number is never kept; only the gateway token
// and display metadata.
type CreditCard struct {
	Token    string `db:"token" json:"token"`
	Last4    string `db:"last4" json:"last4"`
	CardType string `db:"card_type" json:"card_type"`
	ExpMonth int    `db:"exp_month" json:"exp_month"`
	ExpYear  int    `db:"exp_year" json:"exp_year"`
}

// BankAccount is the locally persisted projection of a bank source stored at
// the payment gateway. Fingerprint identifies the underlying account across
// repeated link attempts.
type BankAccount struct {
	Token       string `db:"token" json:"token"`
	Fingerprint string `db:"fingerprint" json:"fingerprint"`
	Name        string `db:"name" json:"name"`
}

// CardInput carries the card details submitted by the billing form. Either a
// single-use gateway token or the raw number is provided; the raw number is
// tokenized before it goes anywhere near persistence.
type CardInput struct {
	Token          string `json:"token,omitempty"`
	Name           string `json:"name"`
	Number         string `json:"number,omitempty"`
	CVC            string `json:"cvc,omitempty"`
	ExpMonth       int    `json:"exp_month"`
	ExpYear        int    `json:"exp_year"`
	StreetAddress1 string `json:"street_address1,omitempty"`
	StreetAddress2 string `json:"street_address2,omitempty"`
	City           string `json:"city,omitempty"`
	Locale         string `json:"locale,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	Country        string `json:"country,omitempty"`
}

// Validate performs the structural checks that must pass before any gateway
// call is made: required fields present and a plausible expiry.
func (i CardInput) Validate() error {
	if i.Name == "" {
		return ierr.NewError("cardholder name is required").
			WithHint("Please provide the name on the card").
			Mark(ierr.ErrValidation)
	}
	if i.Token == "" && i.Number == "" {
		return ierr.NewError("card number or card token is required").
			WithHint("Please provide the card details").
			Mark(ierr.ErrValidation)
	}

	// A gateway token carries its own expiry; only raw details need the
	// structural expiry checks.
	if i.Token != "" {
		return nil
	}

	if i.ExpMonth < 1 || i.ExpMonth > 12 {
		return ierr.NewError("invalid card expiry month").
			WithHint("Expiry month must be between 1 and 12").
			WithReportableDetails(map[string]any{
				"exp_month": i.ExpMonth,
			}).
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()
	if i.ExpYear < now.Year() || (i.ExpYear == now.Year() && i.ExpMonth < int(now.Month())) {
		return ierr.NewError("card is expired").
			WithHint("The card expiry date is in the past").
			Mark(ierr.ErrValidation)
	}
	if i.ExpYear > now.Year()+20 {
		return ierr.NewError("invalid card expiry year").
			WithHint("The card expiry date is implausibly far in the future").
			WithReportableDetails(map[string]any{
				"exp_year": i.ExpYear,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
