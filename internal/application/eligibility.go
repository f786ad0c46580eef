package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

// DefaultMaxOrders caps a wave's order count when the caller does not.
const DefaultMaxOrders = 100

// EligibilitySelector picks the orders that go into a new wave. It combines
// the order subsystem's view of eligibility with this service's own claim
// ledger so an order never lands in two active waves.
type EligibilitySelector struct {
	orders domain.OrderGateway
	waves  domain.WaveRepository
	logger *logging.Logger
}

// NewEligibilitySelector creates a new selector.
func NewEligibilitySelector(orders domain.OrderGateway, waves domain.WaveRepository, logger *logging.Logger) *EligibilitySelector {
	return &EligibilitySelector{
		orders: orders,
		waves:  waves,
		logger: logger.WithComponent("eligibility-selector"),
	}
}

// SelectionResult carries the chosen orders plus bookkeeping for previews.
type SelectionResult struct {
	Orders    []domain.OutboundOrder
	Requested int
	Excluded  []ExcludedOrderDTO
}

// Select resolves an eligibility filter into the final ordered selection.
// Explicit order IDs switch to manual mode: requested orders that fail any
// gate are dropped rather than failing the whole selection.
func (s *EligibilitySelector) Select(ctx context.Context, filter domain.EligibilityFilter) (*SelectionResult, error) {
	if len(filter.OrderIDs) > 0 {
		return s.selectExplicit(ctx, filter)
	}
	return s.selectAutomatic(ctx, filter)
}

func (s *EligibilitySelector) selectExplicit(ctx context.Context, filter domain.EligibilityFilter) (*SelectionResult, error) {
	found, err := s.orders.FindOrdersByIDs(ctx, filter.TenantID, filter.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching requested orders: %w", err)
	}

	byID := make(map[string]domain.OutboundOrder, len(found))
	for _, order := range found {
		byID[order.OrderID] = order
	}

	candidates := make([]domain.OutboundOrder, 0, len(filter.OrderIDs))
	excluded := make([]ExcludedOrderDTO, 0)
	candidateIDs := make([]string, 0, len(filter.OrderIDs))
	seen := make(map[string]bool, len(filter.OrderIDs))
	for _, orderID := range filter.OrderIDs {
		if seen[orderID] {
			continue
		}
		seen[orderID] = true
		order, ok := byID[orderID]
		if !ok {
			excluded = append(excluded, ExcludedOrderDTO{OrderID: orderID, Reason: "not found"})
			continue
		}
		if reason := gateReason(order, filter); reason != "" {
			excluded = append(excluded, ExcludedOrderDTO{OrderID: orderID, Reason: reason})
			continue
		}
		candidates = append(candidates, order)
		candidateIDs = append(candidateIDs, orderID)
	}

	claimed, err := s.waves.ActiveOrderIDs(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("checking active wave claims: %w", err)
	}

	selected := candidates[:0]
	for _, order := range candidates {
		if claimed[order.OrderID] {
			excluded = append(excluded, ExcludedOrderDTO{OrderID: order.OrderID, Reason: "already in an active wave"})
			continue
		}
		selected = append(selected, order)
	}

	sortBySelectionOrder(selected)
	selected = capOrders(selected, filter.MaxOrders)

	s.logger.Info("explicit selection resolved",
		"tenantId", filter.TenantID,
		"requested", len(filter.OrderIDs),
		"selected", len(selected),
		"excluded", len(excluded))

	return &SelectionResult{Orders: selected, Requested: len(filter.OrderIDs), Excluded: excluded}, nil
}

func (s *EligibilitySelector) selectAutomatic(ctx context.Context, filter domain.EligibilityFilter) (*SelectionResult, error) {
	limit := filter.MaxOrders
	if limit <= 0 {
		limit = DefaultMaxOrders
	}

	// Over-fetch so that orders claimed by active waves can be skipped
	// without running short of candidates.
	fetchFilter := filter
	fetchFilter.MaxOrders = limit * 2
	candidates, err := s.orders.FindEligibleOutboundOrders(ctx, fetchFilter)
	if err != nil {
		return nil, fmt.Errorf("fetching eligible orders: %w", err)
	}

	ids := make([]string, 0, len(candidates))
	for _, order := range candidates {
		ids = append(ids, order.OrderID)
	}
	claimed, err := s.waves.ActiveOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checking active wave claims: %w", err)
	}

	selected := make([]domain.OutboundOrder, 0, len(candidates))
	for _, order := range candidates {
		if claimed[order.OrderID] {
			continue
		}
		if gateReason(order, filter) != "" {
			continue
		}
		selected = append(selected, order)
	}

	sortBySelectionOrder(selected)
	selected = capOrders(selected, limit)

	s.logger.Info("automatic selection resolved",
		"tenantId", filter.TenantID,
		"candidates", len(candidates),
		"selected", len(selected))

	return &SelectionResult{Orders: selected, Requested: len(candidates)}, nil
}

// gateReason returns a human-readable exclusion reason, or "" when the order
// passes every gate.
func gateReason(order domain.OutboundOrder, filter domain.EligibilityFilter) string {
	if filter.TenantID != "" && order.TenantID != filter.TenantID {
		return "belongs to another tenant"
	}
	if order.Type != domain.OrderTypeOutbound {
		return "not an outbound order"
	}
	if !filter.AllowsStatus(order.Status) {
		return fmt.Sprintf("status %s is not waveable", order.Status)
	}
	if order.Priority < filter.MinPriority {
		return "priority below threshold"
	}
	if !filter.PromiseAfter.IsZero() && order.PromiseDate.Before(filter.PromiseAfter) {
		return "promise date before window"
	}
	if !filter.PromiseBefore.IsZero() && order.PromiseDate.After(filter.PromiseBefore) {
		return "promise date after window"
	}
	if len(order.Lines) == 0 {
		return "order has no lines"
	}
	return ""
}

// sortBySelectionOrder sorts by priority descending, then promise date
// ascending, then order ID for a stable tiebreak.
func sortBySelectionOrder(orders []domain.OutboundOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority > orders[j].Priority
		}
		if !orders[i].PromiseDate.Equal(orders[j].PromiseDate) {
			return orders[i].PromiseDate.Before(orders[j].PromiseDate)
		}
		return orders[i].OrderID < orders[j].OrderID
	})
}

func capOrders(orders []domain.OutboundOrder, limit int) []domain.OutboundOrder {
	if limit > 0 && len(orders) > limit {
		return orders[:limit]
	}
	return orders
}
