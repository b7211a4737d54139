package dto

import (
	"time"

	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/types"
)

// ChangeTierRequest represents a request to move a business to another
// subscription tier
type ChangeTierRequest struct {
	SubscriptionTier types.SubscriptionTier `json:"subscription_tier" binding:"required"`
}

// ChangeBillingIntervalRequest represents a request to switch the billing
// cycle
type ChangeBillingIntervalRequest struct {
	BillingInterval types.BillingInterval `json:"billing_interval" binding:"required"`
}

// UserCountRequest represents a request to preview or apply a seat count
// change
type UserCountRequest struct {
	AvailableUserCount int `json:"available_user_count" binding:"min=0"`
}

// StorefrontRequest represents a request to toggle the Storefront+ add-on
type StorefrontRequest struct {
	StorefrontIncluded bool `json:"storefront_included"`
}

// DowngradeRequest represents a request to record downgrade intent. The
// downgrade is applied later by a separate process.
type DowngradeRequest struct {
	SubscriptionTier types.SubscriptionTier `json:"subscription_tier" binding:"required"`
}

// CreditCardResponse is the stored card projection
type CreditCardResponse struct {
	Last4    string `json:"last4"`
	CardType string `json:"card_type"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// BankAccountResponse is the stored bank source projection
type BankAccountResponse struct {
	Name string `json:"name"`
}

// BusinessResponse is the business projection returned by billing endpoints
type BusinessResponse struct {
	ID                      string                  `json:"id"`
	Name                    string                  `json:"name"`
	Email                   string                  `json:"email"`
	Status                  types.BusinessStatus    `json:"status"`
	SubscriptionTier        types.SubscriptionTier  `json:"subscription_tier"`
	BillingInterval         types.BillingInterval   `json:"billing_interval"`
	AvailableUserCount      int                     `json:"available_user_count"`
	PaidEmployeesCount      int                     `json:"paid_employees_count"`
	LocationCount           int                     `json:"location_count"`
	StorefrontIncluded      bool                    `json:"storefront_included"`
	DowngradeRequestedAt    *time.Time              `json:"downgrade_requested_at,omitempty"`
	CancellationRequestedAt *time.Time              `json:"cancellation_requested_at,omitempty"`
	CreditCard              *CreditCardResponse     `json:"credit_card,omitempty"`
	BankAccount             *BankAccountResponse    `json:"bank_account,omitempty"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
}

// NewBusinessResponse builds the response projection from the aggregate
func NewBusinessResponse(b *business.Business) *BusinessResponse {
	resp := &BusinessResponse{
		ID:                      b.ID,
		Name:                    b.Name,
		Email:                   b.Email,
		Status:                  b.Status,
		SubscriptionTier:        b.SubscriptionTier,
		BillingInterval:         b.BillingInterval,
		AvailableUserCount:      b.AvailableUserCount,
		PaidEmployeesCount:      b.PaidEmployeesCount,
		LocationCount:           b.LocationCount,
		StorefrontIncluded:      b.StorefrontIncluded,
		DowngradeRequestedAt:    b.DowngradeRequestedAt,
		CancellationRequestedAt: b.CancellationRequestedAt,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}
	if b.CreditCard != nil {
		resp.CreditCard = &CreditCardResponse{
			Last4:    b.CreditCard.Last4,
			CardType: b.CreditCard.CardType,
			ExpMonth: b.CreditCard.ExpMonth,
			ExpYear:  b.CreditCard.ExpYear,
		}
	}
	if b.BankAccount != nil {
		resp.BankAccount = &BankAccountResponse{
			Name: b.BankAccount.Name,
		}
	}
	return resp
}

// ListBusinessesResponse wraps the full business listing
type ListBusinessesResponse struct {
	Items []*BusinessResponse `json:"items"`
	Total int                 `json:"total"`
}

// BusinessNameResponse is the minimal projection used by name lookups
type BusinessNameResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListBusinessNamesResponse wraps the name lookup results
type ListBusinessNamesResponse struct {
	Names []BusinessNameResponse `json:"names"`
}

// PaidEmployeesCountResponse reports the derived paid seat usage
type PaidEmployeesCountResponse struct {
	Count int `json:"count"`
}
