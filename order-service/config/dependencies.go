package config

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jl681/order-processing/order-service/application"
	"github.com/jl681/order-processing/order-service/gateway"
	"github.com/jl681/order-processing/order-service/handlers"
	"github.com/jl681/order-processing/order-service/infrastructure"
	"github.com/jl681/order-processing/order-service/outbox"
	sharedinfra "github.com/jl681/order-processing/shared/infrastructure"
	"github.com/jl681/order-processing/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Repositories
	OrderRepository  *infrastructure.PostgresOrderRepository
	OutboxRepository *infrastructure.PostgresOutboxRepository

	// Gateway and publishing
	NotificationGateway *gateway.NotificationGateway
	FallbackPublisher   *outbox.FallbackPublisher
	Drainer             *outbox.Drainer

	// Use Cases
	ProcessOrder      *application.ProcessOrder
	GetOrder          *application.GetOrder
	ListPendingOrders *application.ListPendingOrders

	// HTTP Handlers
	OrderHandlers *handlers.OrderHandlers

	// Event Handlers
	OrderEventHandlers *handlers.OrderEventHandlers

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	EventSubscriber *sharedinfra.SQSEventSubscriber

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.initTelemetry(ctx, config, telemetry.OrderServiceConfig)

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	deps.DB = db

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	// Initialize repositories
	deps.OrderRepository = infrastructure.NewPostgresOrderRepository(db)
	deps.OutboxRepository = infrastructure.NewPostgresOutboxRepository(db)

	// Initialize the downstream gateway
	deps.NotificationGateway = gateway.NewNotificationGateway(
		&http.Client{Timeout: config.CallTimeout()},
		gateway.Config{
			CallTimeout: config.CallTimeout(),
			Breaker: gateway.BreakerConfig{
				FailureRateThreshold: config.Breaker.FailureRateThreshold,
				WindowSize:           config.Breaker.WindowSize,
				MinimumCalls:         config.Breaker.MinimumCalls,
				Cooldown:             time.Duration(config.Breaker.CooldownMs) * time.Millisecond,
				HalfOpenMaxCalls:     config.Breaker.HalfOpenMaxCalls,
			},
			Endpoints: gateway.DefaultEndpoints(
				config.Downstream.InventoryURL,
				config.Downstream.LogisticsURL,
				config.Downstream.AnalyticsURL,
				config.Downstream.CRMURL,
				config.Downstream.VendorURL,
			),
		},
	)

	// Initialize event publishing with the outbox fallback
	deps.FallbackPublisher = outbox.NewFallbackPublisher(eventPublisher, deps.OutboxRepository, config.PublishDeadline())
	deps.Drainer = outbox.NewDrainer(deps.OutboxRepository, eventPublisher, outbox.DrainerConfig{
		Interval:   time.Duration(config.Drainer.IntervalMs) * time.Millisecond,
		BatchSize:  config.Drainer.BatchSize,
		MaxBackoff: time.Duration(config.Drainer.MaxBackoffMs) * time.Millisecond,
	})

	// Initialize use cases
	deps.ProcessOrder = application.NewProcessOrder(deps.OrderRepository, deps.NotificationGateway, deps.FallbackPublisher, nil)
	deps.GetOrder = application.NewGetOrder(deps.OrderRepository)
	deps.ListPendingOrders = application.NewListPendingOrders(deps.OrderRepository)

	// Initialize handlers
	deps.OrderHandlers = handlers.NewOrderHandlers(deps.ProcessOrder, deps.GetOrder, deps.ListPendingOrders, nil)
	deps.OrderEventHandlers = handlers.NewOrderEventHandlers()

	return deps, nil
}

// BuildConsumerDependencies wires only what the queue consumer needs
func BuildConsumerDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.initTelemetry(ctx, config, telemetry.OrderConsumerConfig)

	deps.OrderEventHandlers = handlers.NewOrderEventHandlers()

	eventSubscriber, err := sharedinfra.NewSQSSubscriberAdapter(config.AWS.SQSQueueURL, deps.OrderEventHandlers)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.EventSubscriber = eventSubscriber

	return deps, nil
}

// BuildWorkerDependencies wires only what the outbox worker needs
func BuildWorkerDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.initTelemetry(ctx, config, telemetry.OutboxWorkerConfig)

	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	deps.DB = db

	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	deps.OutboxRepository = infrastructure.NewPostgresOutboxRepository(db)
	deps.Drainer = outbox.NewDrainer(deps.OutboxRepository, eventPublisher, outbox.DrainerConfig{
		Interval:   time.Duration(config.Drainer.IntervalMs) * time.Millisecond,
		BatchSize:  config.Drainer.BatchSize,
		MaxBackoff: time.Duration(config.Drainer.MaxBackoffMs) * time.Millisecond,
	})

	return deps, nil
}

// initTelemetry sets up tracing and metrics; the process still starts when
// the collector is unreachable
func (d *Dependencies) initTelemetry(ctx context.Context, config *Config, telConfig telemetry.Config) {
	if !config.Telemetry.Enabled {
		return
	}

	tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint))
	if err != nil {
		log.Printf("Failed to initialize telemetry: %v", err)
		return
	}

	d.Telemetry = tel
	d.TelemetryShutdown = telemetryShutdown
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
