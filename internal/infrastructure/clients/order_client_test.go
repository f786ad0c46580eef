package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	apperrors "github.com/wms-platform/wave-planning-service/pkg/errors"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = io.Discard
	return logging.New(config)
}

func TestFindEligibleOutboundOrders(t *testing.T) {
	t.Run("builds the query and decodes orders", func(t *testing.T) {
		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			assert.Equal(t, "/api/v1/orders", r.URL.Path)

			json.NewEncoder(w).Encode(map[string]any{
				"orders": []domain.OutboundOrder{
					{
						OrderID:  "ord-1",
						TenantID: "tenant-1",
						Type:     domain.OrderTypeOutbound,
						Status:   domain.OrderStatusConfirmed,
						Priority: 3,
						Lines:    []domain.OrderLine{{SKU: "SKU001", Quantity: 2}},
					},
				},
			})
		}))
		defer server.Close()

		client := NewOrderClient(server.URL, 5*time.Second, testLogger())
		orders, err := client.FindEligibleOutboundOrders(context.Background(), domain.EligibilityFilter{
			TenantID:    "tenant-1",
			MinPriority: 2,
			MaxOrders:   50,
		})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "ord-1", orders[0].OrderID)

		assert.Equal(t, []string{"outbound"}, gotQuery["type"])
		assert.Equal(t, []string{"tenant-1"}, gotQuery["tenantId"])
		assert.Equal(t, []string{"2"}, gotQuery["minPriority"])
		assert.Equal(t, []string{"50"}, gotQuery["limit"])
		assert.ElementsMatch(t, []string{"new", "confirmed"}, gotQuery["status"])
	})

	t.Run("non-200 responses are errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewOrderClient(server.URL, 5*time.Second, testLogger())
		_, err := client.FindEligibleOutboundOrders(context.Background(), domain.EligibilityFilter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("circuit opens after consecutive failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewOrderClient(server.URL, 5*time.Second, testLogger())
		for i := 0; i < 5; i++ {
			_, err := client.FindEligibleOutboundOrders(context.Background(), domain.EligibilityFilter{})
			require.Error(t, err)
		}

		_, err := client.FindEligibleOutboundOrders(context.Background(), domain.EligibilityFilter{})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeServiceUnavailable, appErr.Code)
	})
}

func TestFindOrdersByIDs(t *testing.T) {
	t.Run("empty input short-circuits", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		client := NewOrderClient(server.URL, 5*time.Second, testLogger())
		orders, err := client.FindOrdersByIDs(context.Background(), "tenant-1", nil)
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.False(t, called)
	})

	t.Run("requests ids as a comma list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "ord-1,ord-2", r.URL.Query().Get("ids"))
			json.NewEncoder(w).Encode(map[string]any{"orders": []domain.OutboundOrder{}})
		}))
		defer server.Close()

		client := NewOrderClient(server.URL, 5*time.Second, testLogger())
		_, err := client.FindOrdersByIDs(context.Background(), "tenant-1", []string{"ord-1", "ord-2"})
		require.NoError(t, err)
	})
}
