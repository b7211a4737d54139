// Package repository holds the Postgres-backed implementations of the domain
// repositories.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/domain/payment"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/types"
)

type businessRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewBusinessRepository creates the Postgres business repository
func NewBusinessRepository(db *sqlx.DB, logger *logger.Logger) business.Repository {
	return &businessRepository{db: db, logger: logger}
}

// businessRow is the flat row shape; the stored funding sources live in
// jsonb columns.
type businessRow struct {
	ID                       string     `db:"id"`
	Name                     string     `db:"name"`
	Email                    string     `db:"email"`
	Status                   string     `db:"status"`
	SubscriptionTier         string     `db:"subscription_tier"`
	BillingInterval          string     `db:"billing_interval"`
	AvailableUserCount       int        `db:"available_user_count"`
	PaidEmployeesCount       int        `db:"paid_employees_count"`
	LocationCount            int        `db:"location_count"`
	StorefrontIncluded       bool       `db:"storefront_included"`
	DowngradeRequestedAt     *time.Time `db:"downgrade_requested_at"`
	CancellationRequestedAt  *time.Time `db:"cancellation_requested_at"`
	GatewayCustomerToken     string     `db:"gateway_customer_token"`
	GatewaySubscriptionToken string     `db:"gateway_subscription_token"`
	CreditCard               []byte     `db:"credit_card"`
	BankAccount              []byte     `db:"bank_account"`
	Version                  int64      `db:"version"`
	CreatedAt                time.Time  `db:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at"`
}

const businessColumns = `
	id, name, email, status, subscription_tier, billing_interval,
	available_user_count, paid_employees_count, location_count,
	storefront_included, downgrade_requested_at, cancellation_requested_at,
	gateway_customer_token, gateway_subscription_token,
	credit_card, bank_account, version, created_at, updated_at`

func (r *businessRow) toDomain() (*business.Business, error) {
	b := &business.Business{
		ID:                       r.ID,
		Name:                     r.Name,
		Email:                    r.Email,
		Status:                   types.BusinessStatus(r.Status),
		SubscriptionTier:         types.SubscriptionTier(r.SubscriptionTier),
		BillingInterval:          types.BillingInterval(r.BillingInterval),
		AvailableUserCount:       r.AvailableUserCount,
		PaidEmployeesCount:       r.PaidEmployeesCount,
		LocationCount:            r.LocationCount,
		StorefrontIncluded:       r.StorefrontIncluded,
		DowngradeRequestedAt:     r.DowngradeRequestedAt,
		CancellationRequestedAt:  r.CancellationRequestedAt,
		GatewayCustomerToken:     r.GatewayCustomerToken,
		GatewaySubscriptionToken: r.GatewaySubscriptionToken,
		Version:                  r.Version,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}

	if len(r.CreditCard) > 0 {
		var card payment.CreditCard
		if err := json.Unmarshal(r.CreditCard, &card); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored credit card record is corrupt").
				Mark(ierr.ErrDatabase)
		}
		b.CreditCard = &card
	}
	if len(r.BankAccount) > 0 {
		var bank payment.BankAccount
		if err := json.Unmarshal(r.BankAccount, &bank); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored bank account record is corrupt").
				Mark(ierr.ErrDatabase)
		}
		b.BankAccount = &bank
	}
	return b, nil
}

func (r *businessRepository) Get(ctx context.Context, id string) (*business.Business, error) {
	var row businessRow
	query := `SELECT` + businessColumns + ` FROM businesses WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("business not found").
				WithHint("Business not found").
				WithReportableDetails(map[string]any{
					"business_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load business").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain()
}

func (r *businessRepository) List(ctx context.Context) ([]*business.Business, error) {
	var rows []businessRow
	query := `SELECT` + businessColumns + ` FROM businesses ORDER BY name`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list businesses").
			Mark(ierr.ErrDatabase)
	}
	return rowsToDomain(rows)
}

func (r *businessRepository) SearchNames(ctx context.Context, query string) ([]*business.Business, error) {
	var rows []businessRow
	stmt := `SELECT` + businessColumns + ` FROM businesses
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 25`

	if err := r.db.SelectContext(ctx, &rows, stmt, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to search businesses").
			Mark(ierr.ErrDatabase)
	}
	return rowsToDomain(rows)
}

// Update persists the business guarded by its version. A stale snapshot
// produces a version conflict instead of silently overwriting a concurrent
// change.
func (r *businessRepository) Update(ctx context.Context, b *business.Business) error {
	var cardJSON, bankJSON []byte
	var err error
	if b.CreditCard != nil {
		if cardJSON, err = json.Marshal(b.CreditCard); err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
	}
	if b.BankAccount != nil {
		if bankJSON, err = json.Marshal(b.BankAccount); err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
	}

	stmt := `UPDATE businesses SET
			name = $1,
			email = $2,
			status = $3,
			subscription_tier = $4,
			billing_interval = $5,
			available_user_count = $6,
			paid_employees_count = $7,
			location_count = $8,
			storefront_included = $9,
			downgrade_requested_at = $10,
			cancellation_requested_at = $11,
			gateway_customer_token = $12,
			gateway_subscription_token = $13,
			credit_card = $14,
			bank_account = $15,
			version = version + 1,
			updated_at = now()
		WHERE id = $16 AND version = $17`

	res, err := r.db.ExecContext(ctx, stmt,
		b.Name,
		b.Email,
		b.Status,
		b.SubscriptionTier,
		b.BillingInterval,
		b.AvailableUserCount,
		b.PaidEmployeesCount,
		b.LocationCount,
		b.StorefrontIncluded,
		b.DowngradeRequestedAt,
		b.CancellationRequestedAt,
		b.GatewayCustomerToken,
		b.GatewaySubscriptionToken,
		cardJSON,
		bankJSON,
		b.ID,
		b.Version,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update business").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		// Distinguish a stale snapshot from a missing row.
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM businesses WHERE id = $1)`, b.ID); err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		if !exists {
			return ierr.NewError("business not found").
				WithHint("Business not found").
				WithReportableDetails(map[string]any{
					"business_id": b.ID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return ierr.NewError("business was modified concurrently").
			WithHint("The business changed while this request was in flight. Retry with fresh data.").
			WithReportableDetails(map[string]any{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func rowsToDomain(rows []businessRow) ([]*business.Business, error) {
	result := make([]*business.Business, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, nil
}
