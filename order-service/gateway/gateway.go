package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Logical names of the five downstream dependencies
const (
	DependencyInventory = "inventory"
	DependencyLogistics = "logistics"
	DependencyAnalytics = "analytics"
	DependencyCRM       = "crm"
	DependencyVendor    = "vendor"
)

// Endpoint describes one downstream dependency
type Endpoint struct {
	// Name is the logical service name.
	Name string

	// NotifyURL receives the "do" call.
	NotifyURL string

	// CompensateURL receives the best-effort "undo" call. Empty means the
	// dependency has no compensating operation.
	CompensateURL string

	// CompensateOnRollback marks this dependency for compensation when the
	// saga rolls back. Only inventory compensates by default; the flag is
	// an explicit per-dependency decision, not an assumption of symmetry.
	CompensateOnRollback bool
}

// Config tunes the notification gateway
type Config struct {
	// CallTimeout is the hard per-call deadline, enforced independently of
	// breaker state. A timeout counts as a breaker failure.
	CallTimeout time.Duration

	// Breaker is the per-dependency circuit breaker tuning.
	Breaker BreakerConfig

	// Endpoints lists the downstream dependencies in fan-out order.
	Endpoints []Endpoint
}

// DefaultEndpoints builds the five dependency endpoints from base URLs,
// using the conventional paths of each remote service.
func DefaultEndpoints(inventory, logistics, analytics, crm, vendor string) []Endpoint {
	return []Endpoint{
		{Name: DependencyInventory, NotifyURL: inventory + "/reserve", CompensateURL: inventory + "/undo", CompensateOnRollback: true},
		{Name: DependencyLogistics, NotifyURL: logistics + "/schedule", CompensateURL: logistics + "/undo"},
		{Name: DependencyAnalytics, NotifyURL: analytics + "/track", CompensateURL: analytics + "/undo"},
		{Name: DependencyCRM, NotifyURL: crm + "/notify", CompensateURL: crm + "/undo"},
		{Name: DependencyVendor, NotifyURL: vendor + "/order", CompensateURL: vendor + "/undo"},
	}
}

// dependencyClient pairs one endpoint with its own circuit breaker
type dependencyClient struct {
	endpoint Endpoint
	breaker  *CircuitBreaker
}

// NotificationGateway calls the five downstream notification services,
// isolating failures of one from the others. Each dependency sits behind its
// own circuit breaker and hard call timeout.
type NotificationGateway struct {
	httpClient  *http.Client
	callTimeout time.Duration
	clients     []*dependencyClient
	byName      map[string]*dependencyClient
}

// NewNotificationGateway creates a gateway over the configured endpoints
func NewNotificationGateway(httpClient *http.Client, cfg Config) *NotificationGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 2 * time.Second
	}

	g := &NotificationGateway{
		httpClient:  httpClient,
		callTimeout: cfg.CallTimeout,
		byName:      make(map[string]*dependencyClient),
	}

	for _, endpoint := range cfg.Endpoints {
		client := &dependencyClient{
			endpoint: endpoint,
			breaker:  NewCircuitBreaker(endpoint.Name, cfg.Breaker),
		}
		client.breaker.OnStateChange = recordBreakerTransition
		g.clients = append(g.clients, client)
		g.byName[endpoint.Name] = client
	}

	return g
}

// NotifyAll issues the notification calls to all dependencies concurrently
// and waits for every call to settle. It returns the first
// DependencyUnavailableError when any call failed; side effects of the calls
// that succeeded are left for compensation.
func (g *NotificationGateway) NotifyAll(ctx context.Context, order *domain.Order) error {
	// An errgroup without context cancellation: a failure in one call does
	// not cancel the others, and Wait blocks until all five have settled.
	var group errgroup.Group

	for _, client := range g.clients {
		client := client
		group.Go(func() error {
			return g.notify(ctx, client, order)
		})
	}

	return group.Wait()
}

// Notify issues a single dependency's notification call
func (g *NotificationGateway) Notify(ctx context.Context, dependency string, order *domain.Order) error {
	client, ok := g.byName[dependency]
	if !ok {
		return errors.Errorf("unknown dependency %q", dependency)
	}
	return g.notify(ctx, client, order)
}

func (g *NotificationGateway) notify(ctx context.Context, client *dependencyClient, order *domain.Order) error {
	name := client.endpoint.Name

	if err := client.breaker.Allow(); err != nil {
		recordCall(ctx, name, "rejected")
		return domain.NewDependencyUnavailable(name, err)
	}

	err := g.post(ctx, client.endpoint.NotifyURL, order)
	if err != nil {
		client.breaker.ReportFailure()
		recordCall(ctx, name, "failure")
		return domain.NewDependencyUnavailable(name, err)
	}

	client.breaker.ReportSuccess()
	recordCall(ctx, name, "success")
	return nil
}

// Compensate issues best-effort undo calls for every dependency flagged for
// rollback compensation. Failures are logged and never escalate; an undo
// must not itself trigger another rollback.
func (g *NotificationGateway) Compensate(ctx context.Context, order *domain.Order) {
	for _, client := range g.clients {
		endpoint := client.endpoint
		if !endpoint.CompensateOnRollback || endpoint.CompensateURL == "" {
			continue
		}

		if err := g.post(ctx, endpoint.CompensateURL, order); err != nil {
			log.Printf("compensation for %s failed on order %s: %v", endpoint.Name, order.ID, err)
			recordCompensation(ctx, endpoint.Name, "failure")
			continue
		}
		recordCompensation(ctx, endpoint.Name, "success")
	}
}

// BreakerState exposes the breaker mode of a dependency
func (g *NotificationGateway) BreakerState(dependency string) (BreakerState, bool) {
	client, ok := g.byName[dependency]
	if !ok {
		return "", false
	}
	return client.breaker.State(), true
}

// post sends the order to a downstream URL under the hard call timeout
func (g *NotificationGateway) post(ctx context.Context, url string, order *domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order")
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "call failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.Errorf("unexpected status %d", res.StatusCode)
	}

	return nil
}

func recordCall(ctx context.Context, dependency, status string) {
	telemetry.RecordCounter(ctx, "downstream_calls_total", "Total downstream notification calls", 1,
		attribute.String("dependency", dependency),
		attribute.String("status", status),
	)
}

func recordCompensation(ctx context.Context, dependency, status string) {
	telemetry.RecordCounter(ctx, "downstream_compensations_total", "Total downstream compensation calls", 1,
		attribute.String("dependency", dependency),
		attribute.String("status", status),
	)
}

func recordBreakerTransition(dependency string, from, to BreakerState) {
	telemetry.RecordCounter(context.Background(), "circuit_breaker_transitions_total", "Total circuit breaker state transitions", 1,
		attribute.String("dependency", dependency),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	)
}
