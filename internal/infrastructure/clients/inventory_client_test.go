package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/wave-planning-service/internal/domain"
)

func TestFindAvailableStock(t *testing.T) {
	t.Run("queries by tenant and sku", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/stock", r.URL.Path)
			assert.Equal(t, "tenant-1", r.URL.Query().Get("tenantId"))
			assert.Equal(t, "SKU001", r.URL.Query().Get("sku"))
			assert.Equal(t, "1", r.URL.Query().Get("minAvailable"))

			json.NewEncoder(w).Encode(map[string]any{
				"stock": []domain.LocationStock{
					{
						LocationID: "A-01-01-01",
						SKU:        "SKU001",
						TenantID:   "tenant-1",
						Available:  24,
						Velocity:   domain.VelocityHot,
						Zone:       "A",
						Aisle:      1,
						Rack:       1,
						Level:      1,
					},
				},
			})
		}))
		defer server.Close()

		client := NewInventoryClient(server.URL, 5*time.Second, testLogger())
		stock, err := client.FindAvailableStock(context.Background(), "tenant-1", "SKU001")
		require.NoError(t, err)
		require.Len(t, stock, 1)
		assert.Equal(t, "A-01-01-01", stock[0].LocationID)
		assert.Equal(t, 24, stock[0].Available)
	})

	t.Run("non-200 responses are errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewInventoryClient(server.URL, 5*time.Second, testLogger())
		_, err := client.FindAvailableStock(context.Background(), "tenant-1", "SKU001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
	})
}
