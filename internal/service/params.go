package service

import (
	"context"

	"github.com/rentstack/rentstack/internal/config"
	"github.com/rentstack/rentstack/internal/domain/business"
	"github.com/rentstack/rentstack/internal/domain/tier"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/gateway"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/rentstack/rentstack/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	TierCatalog *tier.Catalog

	BusinessRepo business.Repository

	Gateway   gateway.Gateway
	BankLinks gateway.BankLinkConverter

	EventPublisher publisher.BillingEventPublisher
}

// NewServiceParams creates the common service dependencies bundle
func NewServiceParams(
	logger *logger.Logger,
	cfg *config.Configuration,
	tierCatalog *tier.Catalog,
	businessRepo business.Repository,
	gw gateway.Gateway,
	bankLinks gateway.BankLinkConverter,
	eventPublisher publisher.BillingEventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         cfg,
		TierCatalog:    tierCatalog,
		BusinessRepo:   businessRepo,
		Gateway:        gw,
		BankLinks:      bankLinks,
		EventPublisher: eventPublisher,
	}
}

// reportGatewayIncident records transient or credential failures from the
// payment gateway as operational events so they surface outside request logs.
// Declines are customer facing and are not reported here.
func (p ServiceParams) reportGatewayIncident(ctx context.Context, businessID, operation string, err error) {
	if !ierr.IsGatewayTransient(err) && !ierr.IsGatewayAuth(err) {
		return
	}

	p.Logger.Errorw("payment gateway incident",
		"business_id", businessID,
		"operation", operation,
		"error", err,
	)

	p.EventPublisher.Publish(ctx, types.EventGatewayIncident, businessID, map[string]any{
		"operation": operation,
		"error":     err.Error(),
	})
}
