package dto

import (
	"github.com/rentstack/rentstack/internal/domain/payment"
)

// SaveCreditCardRequest carries either a pre-tokenized card or raw card
// details to tokenize server side
type SaveCreditCardRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name" binding:"required"`
	Number   string `json:"number"`
	CVC      string `json:"cvc"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`

	StreetAddress1 string `json:"street_address1"`
	StreetAddress2 string `json:"street_address2"`
	City           string `json:"city"`
	Locale         string `json:"locale"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
}

// ToCardInput converts the request into the domain card input
func (r *SaveCreditCardRequest) ToCardInput() payment.CardInput {
	return payment.CardInput{
		Token:          r.Token,
		Name:           r.Name,
		Number:         r.Number,
		CVC:            r.CVC,
		ExpMonth:       r.ExpMonth,
		ExpYear:        r.ExpYear,
		StreetAddress1: r.StreetAddress1,
		StreetAddress2: r.StreetAddress2,
		City:           r.City,
		Locale:         r.Locale,
		PostalCode:     r.PostalCode,
		Country:        r.Country,
	}
}

// SaveBankAccountRequest carries a bank link token to verify and attach
type SaveBankAccountRequest struct {
	Name      string `json:"name"`
	Token     string `json:"token" binding:"required"`
	AccountID string `json:"account_id" binding:"required"`
}
