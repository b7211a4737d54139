package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/rentstack/rentstack/internal/api"
	v1 "github.com/rentstack/rentstack/internal/api/v1"
	"github.com/rentstack/rentstack/internal/config"
	"github.com/rentstack/rentstack/internal/domain/tier"
	"github.com/rentstack/rentstack/internal/gateway/plaid"
	"github.com/rentstack/rentstack/internal/gateway/stripe"
	"github.com/rentstack/rentstack/internal/httpclient"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/postgres"
	pubsubMemory "github.com/rentstack/rentstack/internal/pubsub/memory"
	"github.com/rentstack/rentstack/internal/repository"
	"github.com/rentstack/rentstack/internal/service"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/rentstack/rentstack/internal/validator"
	"github.com/rentstack/rentstack/internal/webhook/publisher"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewClient,

			// HTTP Client
			httpclient.NewDefaultClient,

			// PubSub and event publishing
			pubsubMemory.NewPubSub,
			publisher.NewPublisher,

			// Payment gateway and bank linking
			stripe.NewGateway,
			plaid.NewConverter,

			// Tier catalog
			tier.NewCatalog,

			// Repositories
			repository.NewBusinessRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewSubscriptionService,
			service.NewPaymentMethodService,
			service.NewBusinessService,
			service.NewBillingService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	businessService service.BusinessService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Business: v1.NewBusinessHandler(businessService, logger),
		Billing:  v1.NewBillingHandler(billingService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	eventPublisher publisher.BillingEventPublisher,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, eventPublisher, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	eventPublisher publisher.BillingEventPublisher,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("Starting API server on %s", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return eventPublisher.Close()
		},
	})
}
