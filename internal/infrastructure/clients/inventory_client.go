package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	apperrors "github.com/wms-platform/wave-planning-service/pkg/errors"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

// InventoryClient reads pickable stock from the inventory service over HTTP.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
}

// NewInventoryClient creates a new inventory service client.
func NewInventoryClient(baseURL string, timeout time.Duration, logger *logging.Logger) *InventoryClient {
	componentLogger := logger.WithComponent("inventory-client")
	settings := gobreaker.Settings{
		Name:        "inventory-service",
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

	return &InventoryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     componentLogger,
	}
}

// FindAvailableStock returns all pick locations holding the SKU with units
// available, for the given tenant.
func (c *InventoryClient) FindAvailableStock(ctx context.Context, tenantID, sku string) ([]domain.LocationStock, error) {
	query := url.Values{}
	query.Set("tenantId", tenantID)
	query.Set("sku", sku)
	query.Set("minAvailable", "1")
	endpoint := fmt.Sprintf("%s/api/v1/stock?%s", c.baseURL, query.Encode())

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling inventory service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("inventory service returned status %d", resp.StatusCode)
		}

		var payload struct {
			Stock []domain.LocationStock `json:"stock"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decoding stock response: %w", err)
		}
		return payload.Stock, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.ErrServiceUnavailable("inventory service").Wrap(err)
		}
		return nil, err
	}

	stock := result.([]domain.LocationStock)
	c.logger.Debug("stock fetched", "sku", sku, "locations", len(stock))
	return stock, nil
}
