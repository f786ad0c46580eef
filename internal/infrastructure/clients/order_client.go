package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	apperrors "github.com/wms-platform/wave-planning-service/pkg/errors"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

// OrderClient reads outbound orders from the order service over HTTP. Calls
// go through a circuit breaker so a struggling order service degrades wave
// creation fast instead of hanging it.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
}

// NewOrderClient creates a new order service client.
func NewOrderClient(baseURL string, timeout time.Duration, logger *logging.Logger) *OrderClient {
	componentLogger := logger.WithComponent("order-client")
	settings := gobreaker.Settings{
		Name:        "order-service",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			componentLogger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &OrderClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     componentLogger,
	}
}

// FindEligibleOutboundOrders queries the order service for waveable orders.
func (c *OrderClient) FindEligibleOutboundOrders(ctx context.Context, filter domain.EligibilityFilter) ([]domain.OutboundOrder, error) {
	query := url.Values{}
	query.Set("type", string(domain.OrderTypeOutbound))
	if filter.TenantID != "" {
		query.Set("tenantId", filter.TenantID)
	}
	if filter.MinPriority > 0 {
		query.Set("minPriority", strconv.Itoa(filter.MinPriority))
	}
	for _, status := range filter.StatusWhitelist() {
		query.Add("status", string(status))
	}
	if !filter.PromiseAfter.IsZero() {
		query.Set("promiseAfter", filter.PromiseAfter.Format(time.RFC3339))
	}
	if !filter.PromiseBefore.IsZero() {
		query.Set("promiseBefore", filter.PromiseBefore.Format(time.RFC3339))
	}
	if filter.MaxOrders > 0 {
		query.Set("limit", strconv.Itoa(filter.MaxOrders))
	}

	endpoint := fmt.Sprintf("%s/api/v1/orders?%s", c.baseURL, query.Encode())
	return c.fetchOrders(ctx, endpoint)
}

// FindOrdersByIDs fetches specific orders. Unknown IDs are simply absent from
// the result.
func (c *OrderClient) FindOrdersByIDs(ctx context.Context, tenantID string, orderIDs []string) ([]domain.OutboundOrder, error) {
	if len(orderIDs) == 0 {
		return []domain.OutboundOrder{}, nil
	}

	query := url.Values{}
	query.Set("tenantId", tenantID)
	query.Set("ids", strings.Join(orderIDs, ","))

	endpoint := fmt.Sprintf("%s/api/v1/orders?%s", c.baseURL, query.Encode())
	return c.fetchOrders(ctx, endpoint)
}

func (c *OrderClient) fetchOrders(ctx context.Context, endpoint string) ([]domain.OutboundOrder, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling order service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
		}

		var payload struct {
			Orders []domain.OutboundOrder `json:"orders"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decoding order response: %w", err)
		}
		return payload.Orders, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.ErrServiceUnavailable("order service").Wrap(err)
		}
		return nil, err
	}

	orders := result.([]domain.OutboundOrder)
	c.logger.Debug("orders fetched", "count", len(orders))
	return orders, nil
}
