package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/ticketing/internal/api"
	"github.com/flexprice/ticketing/internal/api/cron"
	v1 "github.com/flexprice/ticketing/internal/api/v1"
	"github.com/flexprice/ticketing/internal/cache"
	"github.com/flexprice/ticketing/internal/config"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/metrics"
	"github.com/flexprice/ticketing/internal/postgres"
	"github.com/flexprice/ticketing/internal/publisher"
	"github.com/flexprice/ticketing/internal/pubsub"
	"github.com/flexprice/ticketing/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/ticketing/internal/pubsub/router"
	"github.com/flexprice/ticketing/internal/repository"
	"github.com/flexprice/ticketing/internal/scheduler"
	"github.com/flexprice/ticketing/internal/sentry"
	"github.com/flexprice/ticketing/internal/service"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/flexprice/ticketing/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Metrics
			metrics.NewMetrics,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewSentryClient,

			// Repositories
			repository.NewSubscriptionRepository,
			repository.NewServiceRepository,
			repository.NewTicketRepository,

			// PubSub
			memory.NewPubSub,
			pubsubRouter.NewRouter,
			publisher.NewTicketPublisher,
		),
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewBillingService,
			service.NewPaymentDateService,
			service.NewTicketService,
			service.NewTicketEventConsumer,
			scheduler.NewScheduler,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			closeDB,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	db postgres.IClient,
	logger *logger.Logger,
	billingService service.BillingService,
	paymentDateService service.PaymentDateService,
	ticketService service.TicketService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(db, logger),
		Billing:      v1.NewBillingHandler(billingService, logger),
		Subscription: v1.NewSubscriptionHandler(paymentDateService, ticketService, logger),
		CronSweep:    cron.NewSweepHandler(paymentDateService, ticketService, logger),
	}
}

func closeDB(lc fx.Lifecycle, db *postgres.DB, ps pubsub.PubSub) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return ps.Close()
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	consumer *service.TicketEventConsumer,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, consumer, log)
		if cfg.Scheduler.Enabled {
			startScheduler(lc, sched, log)
		}
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, consumer, log)
	case types.ModeScheduler:
		startMessageRouter(lc, router, consumer, log)
		startScheduler(lc, sched, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down API server")
			return srv.Shutdown(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	consumer *service.TicketEventConsumer,
	log *logger.Logger,
) {
	consumer.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting message router")
			go func() {
				if err := router.Run(context.Background()); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			select {
			case <-router.Running():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping message router")
			return router.Close()
		},
	})
}

func startScheduler(lc fx.Lifecycle, sched *scheduler.Scheduler, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting sweep scheduler")
			return sched.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping sweep scheduler")
			return sched.Stop(ctx)
		},
	})
}
