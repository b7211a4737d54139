package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/rentstack/rentstack/internal/domain/payment"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
)

var _ gateway.Gateway = (*FakeGateway)(nil)

// FakeGateway is a recording payment gateway for service tests. Every call
// increments a named counter, and any operation can be scripted to fail.
type FakeGateway struct {
	mu sync.Mutex

	calls    map[string]int
	failures map[string]error

	Customers     map[string]*gateway.Customer
	BankSources   map[string][]*gateway.Source
	Subscriptions map[string]*gateway.Subscription

	// LastPlan captures the plan context of the most recent subscription
	// create or update.
	LastPlan    gateway.PlanContext
	LastNote    string
	LastProrate bool

	nextID int
}

// NewFakeGateway creates a new FakeGateway with no scripted failures
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		calls:         make(map[string]int),
		failures:      make(map[string]error),
		Customers:     make(map[string]*gateway.Customer),
		BankSources:   make(map[string][]*gateway.Source),
		Subscriptions: make(map[string]*gateway.Subscription),
	}
}

// FailWith scripts the named operation to return err
func (g *FakeGateway) FailWith(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[op] = err
}

// Calls returns how many times the named operation ran
func (g *FakeGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// TotalCalls returns how many gateway operations ran in total
func (g *FakeGateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

func (g *FakeGateway) record(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	return g.failures[op]
}

func (g *FakeGateway) newID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	return fmt.Sprintf("%s_%04d", prefix, g.nextID)
}

func (g *FakeGateway) RetrieveCustomer(ctx context.Context, token string) (*gateway.Customer, error) {
	if err := g.record("retrieve_customer"); err != nil {
		return nil, err
	}
	if c, ok := g.Customers[token]; ok {
		return c, nil
	}
	return &gateway.Customer{ID: token}, nil
}

func (g *FakeGateway) CreateCardToken(ctx context.Context, card payment.CardInput) (string, error) {
	if err := g.record("create_card_token"); err != nil {
		return "", err
	}
	if card.Token != "" {
		return card.Token, nil
	}
	return g.newID("tok"), nil
}

func (g *FakeGateway) cardSource(cardToken string) *gateway.Source {
	last4 := "4242"
	if len(cardToken) >= 4 {
		last4 = cardToken[len(cardToken)-4:]
	}
	return &gateway.Source{
		ID:       g.newID("pm"),
		Kind:     gateway.SourceKindCard,
		Brand:    "Visa",
		Last4:    last4,
		ExpMonth: 12,
		ExpYear:  2030,
	}
}

func (g *FakeGateway) AttachCardSource(ctx context.Context, customer *gateway.Customer, cardToken string) (*gateway.Source, error) {
	if err := g.record("attach_card_source"); err != nil {
		return nil, err
	}
	return g.cardSource(cardToken), nil
}

func (g *FakeGateway) ReplaceCardSource(ctx context.Context, customer *gateway.Customer, cardToken string) (*gateway.Source, error) {
	if err := g.record("replace_card_source"); err != nil {
		return nil, err
	}
	return g.cardSource(cardToken), nil
}

func (g *FakeGateway) CreateBankSource(ctx context.Context, details gateway.BankDetails) (*gateway.Source, error) {
	if err := g.record("create_bank_source"); err != nil {
		return nil, err
	}
	return &gateway.Source{
		ID:          g.newID("pm"),
		Kind:        gateway.SourceKindBank,
		Last4:       lastFour(details.AccountNumber),
		Fingerprint: "fp_" + details.AccountNumber,
		BankName:    "Test Federal",
	}, nil
}

func (g *FakeGateway) FindBankSource(ctx context.Context, customer *gateway.Customer, fingerprint string) (*gateway.Source, error) {
	if err := g.record("find_bank_source"); err != nil {
		return nil, err
	}
	for _, src := range g.BankSources[customer.ID] {
		if src.Fingerprint == fingerprint {
			return src, nil
		}
	}
	return nil, ierr.NewError("no bank source matches the fingerprint").
		Mark(ierr.ErrNotFound)
}

func (g *FakeGateway) AttachBankSource(ctx context.Context, customer *gateway.Customer, sourceID string) (*gateway.Source, error) {
	if err := g.record("attach_bank_source"); err != nil {
		return nil, err
	}
	src := &gateway.Source{
		ID:          sourceID,
		Kind:        gateway.SourceKindBank,
		Last4:       "6789",
		Fingerprint: "fp_attached",
		BankName:    "Test Federal",
	}
	g.mu.Lock()
	g.BankSources[customer.ID] = append(g.BankSources[customer.ID], src)
	g.mu.Unlock()
	return src, nil
}

func (g *FakeGateway) CreateSubscription(ctx context.Context, customer *gateway.Customer, plan gateway.PlanContext) (*gateway.Subscription, error) {
	if err := g.record("create_subscription"); err != nil {
		return nil, err
	}
	sub := &gateway.Subscription{ID: g.newID("sub"), Status: "active"}
	g.mu.Lock()
	g.Subscriptions[sub.ID] = sub
	g.LastPlan = plan
	g.mu.Unlock()
	return sub, nil
}

func (g *FakeGateway) UpdateSubscription(ctx context.Context, customer *gateway.Customer, subscriptionToken string, plan gateway.PlanContext, note string, prorate bool) (*gateway.Subscription, error) {
	if err := g.record("update_subscription"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.LastPlan = plan
	g.LastNote = note
	g.LastProrate = prorate
	g.mu.Unlock()
	return &gateway.Subscription{ID: subscriptionToken, Status: "active"}, nil
}

func (g *FakeGateway) PreviewProration(ctx context.Context, customer *gateway.Customer, subscriptionToken string, plan gateway.PlanContext) (*gateway.ProrationQuote, error) {
	if err := g.record("preview_proration"); err != nil {
		return nil, err
	}
	return &gateway.ProrationQuote{
		AmountDue: plan.Amount,
		Currency:  "usd",
	}, nil
}

func lastFour(s string) string {
	if len(s) < 4 {
		return s
	}
	return s[len(s)-4:]
}

var _ gateway.BankLinkConverter = (*FakeBankLinkConverter)(nil)

// FakeBankLinkConverter resolves every link token to fixed bank details
type FakeBankLinkConverter struct {
	Details *gateway.BankDetails
	Err     error
	calls   int
}

func NewFakeBankLinkConverter() *FakeBankLinkConverter {
	return &FakeBankLinkConverter{
		Details: &gateway.BankDetails{
			AccountHolder: "Test Business",
			AccountNumber: "000123456789",
			RoutingNumber: "110000000",
		},
	}
}

func (c *FakeBankLinkConverter) ResolveBankAccount(ctx context.Context, linkToken string, accountID string) (*gateway.BankDetails, error) {
	c.calls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Details, nil
}
