// Package plaid resolves bank-link tokens into attachable bank account
// details via the Plaid Auth API.
package plaid

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rentstack/rentstack/internal/config"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/httpclient"
	"github.com/rentstack/rentstack/internal/logger"
)

const defaultHost = "https://production.plaid.com"

// Converter implements gateway.BankLinkConverter over the Plaid HTTP API.
type Converter struct {
	client httpclient.Client
	cfg    *config.PlaidConfig
	logger *logger.Logger
}

// NewConverter creates a Plaid-backed bank link converter.
func NewConverter(client httpclient.Client, cfg *config.Configuration, logger *logger.Logger) gateway.BankLinkConverter {
	return &Converter{
		client: client,
		cfg:    &cfg.Plaid,
		logger: logger,
	}
}

type authGetRequest struct {
	ClientID    string         `json:"client_id"`
	Secret      string         `json:"secret"`
	AccessToken string         `json:"access_token"`
	Options     authGetOptions `json:"options"`
}

type authGetOptions struct {
	AccountIDs []string `json:"account_ids"`
}

type authGetResponse struct {
	Accounts []struct {
		AccountID string `json:"account_id"`
		Name      string `json:"name"`
	} `json:"accounts"`
	Numbers struct {
		ACH []struct {
			AccountID string `json:"account_id"`
			Account   string `json:"account"`
			Routing   string `json:"routing"`
		} `json:"ach"`
	} `json:"numbers"`
}

// ResolveBankAccount exchanges a link token and account id for the account
// and routing numbers the gateway needs to create a bank source.
func (c *Converter) ResolveBankAccount(ctx context.Context, linkToken string, accountID string) (*gateway.BankDetails, error) {
	body, err := json.Marshal(authGetRequest{
		ClientID:    c.cfg.ClientID,
		Secret:      c.cfg.Secret,
		AccessToken: linkToken,
		Options:     authGetOptions{AccountIDs: []string{accountID}},
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build bank link request").
			Mark(ierr.ErrSystem)
	}

	resp, err := c.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.host() + "/auth/get",
		Body:   body,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Bank link provider unavailable. Please try again later.").
			Mark(ierr.ErrGatewayTransient)
	}

	var authResp authGetResponse
	if err := json.Unmarshal(resp.Body, &authResp); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unexpected response from bank link provider").
			Mark(ierr.ErrGatewayTransient)
	}

	details := &gateway.BankDetails{}
	for _, ach := range authResp.Numbers.ACH {
		if ach.AccountID == accountID {
			details.AccountNumber = ach.Account
			details.RoutingNumber = ach.Routing
			break
		}
	}
	for _, account := range authResp.Accounts {
		if account.AccountID == accountID {
			details.AccountHolder = account.Name
			break
		}
	}

	if details.AccountNumber == "" || details.RoutingNumber == "" {
		return nil, ierr.NewError("bank account not found in link response").
			WithHint("The selected bank account could not be resolved").
			WithReportableDetails(map[string]any{
				"account_id": accountID,
			}).
			Mark(ierr.ErrValidation)
	}

	return details, nil
}

func (c *Converter) host() string {
	if c.cfg.Host != "" {
		return c.cfg.Host
	}
	return defaultHost
}
