package application

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = io.Discard
	return logging.New(config)
}

type mockWaveRepository struct {
	mock.Mock
}

func (m *mockWaveRepository) CreateWave(ctx context.Context, wave *domain.Wave, links []domain.WaveOrderLink, tasks []domain.PickTask) error {
	args := m.Called(ctx, wave, links, tasks)
	return args.Error(0)
}

func (m *mockWaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	args := m.Called(ctx, waveID)
	if wave, ok := args.Get(0).(*domain.Wave); ok {
		return wave, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) FindActive(ctx context.Context, tenantID string) ([]*domain.Wave, error) {
	args := m.Called(ctx, tenantID)
	if waves, ok := args.Get(0).([]*domain.Wave); ok {
		return waves, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) FindByStatus(ctx context.Context, tenantID string, status domain.WaveStatus) ([]*domain.Wave, error) {
	args := m.Called(ctx, tenantID, status)
	if waves, ok := args.Get(0).([]*domain.Wave); ok {
		return waves, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.Wave, error) {
	args := m.Called(ctx, orderID)
	if waves, ok := args.Get(0).([]*domain.Wave); ok {
		return waves, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) FindTasks(ctx context.Context, waveID string) ([]domain.PickTask, error) {
	args := m.Called(ctx, waveID)
	if tasks, ok := args.Get(0).([]domain.PickTask); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) FindTask(ctx context.Context, waveID, taskID string) (*domain.PickTask, error) {
	args := m.Called(ctx, waveID, taskID)
	if task, ok := args.Get(0).(*domain.PickTask); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) CountOpenTasks(ctx context.Context, waveID string) (int64, error) {
	args := m.Called(ctx, waveID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWaveRepository) UpdateWaveStatus(ctx context.Context, wave *domain.Wave, from domain.WaveStatus, releaseOrders bool) error {
	args := m.Called(ctx, wave, from, releaseOrders)
	return args.Error(0)
}

func (m *mockWaveRepository) UpdateTask(ctx context.Context, task *domain.PickTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockWaveRepository) ActiveOrderIDs(ctx context.Context, orderIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, orderIDs)
	if claimed, ok := args.Get(0).(map[string]bool); ok {
		return claimed, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWaveRepository) Delete(ctx context.Context, waveID string) error {
	args := m.Called(ctx, waveID)
	return args.Error(0)
}

type mockOrderGateway struct {
	mock.Mock
}

func (m *mockOrderGateway) FindEligibleOutboundOrders(ctx context.Context, filter domain.EligibilityFilter) ([]domain.OutboundOrder, error) {
	args := m.Called(ctx, filter)
	if orders, ok := args.Get(0).([]domain.OutboundOrder); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderGateway) FindOrdersByIDs(ctx context.Context, tenantID string, orderIDs []string) ([]domain.OutboundOrder, error) {
	args := m.Called(ctx, tenantID, orderIDs)
	if orders, ok := args.Get(0).([]domain.OutboundOrder); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) Publish(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// fakeInventoryGateway serves stock from an in-memory map keyed by SKU. The
// optimizer caches and decrements its own copy, so the fixture stays intact
// across calls.
type fakeInventoryGateway struct {
	stock map[string][]domain.LocationStock
	calls map[string]int
}

func newFakeInventory(stock map[string][]domain.LocationStock) *fakeInventoryGateway {
	return &fakeInventoryGateway{stock: stock, calls: make(map[string]int)}
}

func (f *fakeInventoryGateway) FindAvailableStock(_ context.Context, _, sku string) ([]domain.LocationStock, error) {
	f.calls[sku]++
	entries := f.stock[sku]
	out := make([]domain.LocationStock, len(entries))
	copy(out, entries)
	return out, nil
}
