package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
)

// WaveOptimizer turns a selected set of orders into sequenced pick tasks
// according to the wave's picking strategy. All strategies share the same
// pipeline: group demand, resolve locations against a wave-wide stock view,
// then sequence along the pick path.
type WaveOptimizer struct {
	inventory domain.InventoryGateway
	logger    *logging.Logger
}

// NewWaveOptimizer creates a new optimizer.
func NewWaveOptimizer(inventory domain.InventoryGateway, logger *logging.Logger) *WaveOptimizer {
	return &WaveOptimizer{
		inventory: inventory,
		logger:    logger.WithComponent("wave-optimizer"),
	}
}

// pickLine is one exploded order line awaiting location resolution.
type pickLine struct {
	orderID string
	sku     string
	qty     int
}

// skuDemand is grouped demand for one SKU within one planning group.
type skuDemand struct {
	sku      string
	qty      int
	orderIDs []string
	group    string // strategy-specific grouping key, sequenced lexically
}

// resolvedPick is demand pinned to a concrete location.
type resolvedPick struct {
	demand   skuDemand
	qty      int
	location domain.LocationStock
}

// Plan generates pick tasks for the wave. The returned tasks carry a dense
// sequence starting at 1.
func (o *WaveOptimizer) Plan(ctx context.Context, waveID, tenantID string, strategy domain.PickingStrategy, orders []domain.OutboundOrder) ([]domain.PickTask, error) {
	if len(orders) == 0 {
		return nil, domain.ErrEmptySelection
	}

	lines := explodeOrders(orders)

	var demands []skuDemand
	switch strategy {
	case domain.StrategyBatchPicking:
		demands = groupBatch(lines)
	case domain.StrategyZonePicking:
		demands = groupPerOrder(orders)
	case domain.StrategyDiscretePicking:
		demands = groupPerOrder(orders)
	case domain.StrategyWavePicking:
		demands = groupByPriorityTier(orders)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, strategy)
	}

	cache := newStockCache(o.inventory, tenantID)
	picks := make([]resolvedPick, 0, len(demands))
	for _, demand := range demands {
		resolved, err := cache.resolve(ctx, demand)
		if err != nil {
			return nil, err
		}
		picks = append(picks, resolved...)
	}

	sequencePicks(strategy, picks)

	now := time.Now().UTC()
	tasks := make([]domain.PickTask, 0, len(picks))
	for i, pick := range picks {
		tasks = append(tasks, domain.PickTask{
			TaskID:     uuid.NewString(),
			WaveID:     waveID,
			TenantID:   tenantID,
			OrderIDs:   pick.demand.orderIDs,
			SKU:        pick.demand.sku,
			Quantity:   pick.qty,
			LocationID: pick.location.LocationID,
			Zone:       pick.location.Zone,
			Sequence:   i + 1,
			Status:     domain.PickTaskStatusPending,
			CreatedAt:  now,
		})
	}

	o.logger.Info("wave planned",
		"waveId", waveID,
		"strategy", string(strategy),
		"orders", len(orders),
		"tasks", len(tasks))

	return tasks, nil
}

func explodeOrders(orders []domain.OutboundOrder) []pickLine {
	lines := make([]pickLine, 0)
	for _, order := range orders {
		for _, line := range order.Lines {
			if line.Quantity <= 0 {
				continue
			}
			lines = append(lines, pickLine{orderID: order.OrderID, sku: line.SKU, qty: line.Quantity})
		}
	}
	return lines
}

// groupBatch merges demand per SKU across the whole wave, before any
// location is chosen, so a picker visits each location once per SKU.
func groupBatch(lines []pickLine) []skuDemand {
	bySKU := make(map[string]*skuDemand)
	order := make([]string, 0)
	for _, line := range lines {
		d, ok := bySKU[line.sku]
		if !ok {
			d = &skuDemand{sku: line.sku}
			bySKU[line.sku] = d
			order = append(order, line.sku)
		}
		d.qty += line.qty
		d.orderIDs = appendUnique(d.orderIDs, line.orderID)
	}

	demands := make([]skuDemand, 0, len(order))
	for _, sku := range order {
		demands = append(demands, *bySKU[sku])
	}
	return demands
}

// groupPerOrder keeps each order's lines separate, preserving the incoming
// order sequence. Used by discrete and zone picking; the strategies differ
// only in how the resolved picks are sequenced afterwards.
func groupPerOrder(orders []domain.OutboundOrder) []skuDemand {
	demands := make([]skuDemand, 0)
	for i, order := range orders {
		group := fmt.Sprintf("%06d", i)
		merged := make(map[string]int)
		skus := make([]string, 0, len(order.Lines))
		for _, line := range order.Lines {
			if line.Quantity <= 0 {
				continue
			}
			if _, ok := merged[line.SKU]; !ok {
				skus = append(skus, line.SKU)
			}
			merged[line.SKU] += line.Quantity
		}
		for _, sku := range skus {
			demands = append(demands, skuDemand{
				sku:      sku,
				qty:      merged[sku],
				orderIDs: []string{order.OrderID},
				group:    group,
			})
		}
	}
	return demands
}

// groupByPriorityTier merges SKU demand within each priority tier. Tiers are
// planned from the most urgent down so high-priority stock claims win.
func groupByPriorityTier(orders []domain.OutboundOrder) []skuDemand {
	tiers := make(map[int][]domain.OutboundOrder)
	priorities := make([]int, 0)
	for _, order := range orders {
		if _, ok := tiers[order.Priority]; !ok {
			priorities = append(priorities, order.Priority)
		}
		tiers[order.Priority] = append(tiers[order.Priority], order)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(priorities)))

	demands := make([]skuDemand, 0)
	for rank, priority := range priorities {
		group := fmt.Sprintf("%06d", rank)
		tierDemands := groupBatch(explodeOrders(tiers[priority]))
		for _, d := range tierDemands {
			d.group = group
			demands = append(demands, d)
		}
	}
	return demands
}

// sequencePicks orders resolved picks along the pick path and is what makes
// the strategies feel different on the floor. Group keys (order position,
// priority tier) dominate for strategies that have them; within a group the
// serpentine walk order rules. Zone picking has no group: each zone's work is
// contiguous and walks the zone in coordinate order, whatever order the lines
// came from.
func sequencePicks(strategy domain.PickingStrategy, picks []resolvedPick) {
	sort.SliceStable(picks, func(i, j int) bool {
		a, b := picks[i], picks[j]
		switch strategy {
		case domain.StrategyZonePicking:
			if a.location.Zone != b.location.Zone {
				return a.location.Zone < b.location.Zone
			}
		case domain.StrategyDiscretePicking, domain.StrategyWavePicking:
			if a.demand.group != b.demand.group {
				return a.demand.group < b.demand.group
			}
		}
		if wa, wb := a.location.WalkOrder(), b.location.WalkOrder(); wa != wb {
			return wa < wb
		}
		return a.demand.sku < b.demand.sku
	})
}

// stockCache is the wave-wide mutable view of pickable stock. Fetches each
// SKU's candidates once and decrements availability as demand is resolved so
// two picks never claim the same units.
type stockCache struct {
	inventory domain.InventoryGateway
	tenantID  string
	bySKU     map[string][]*domain.LocationStock
}

func newStockCache(inventory domain.InventoryGateway, tenantID string) *stockCache {
	return &stockCache{
		inventory: inventory,
		tenantID:  tenantID,
		bySKU:     make(map[string][]*domain.LocationStock),
	}
}

func (c *stockCache) candidates(ctx context.Context, sku string) ([]*domain.LocationStock, error) {
	if cached, ok := c.bySKU[sku]; ok {
		return cached, nil
	}
	stock, err := c.inventory.FindAvailableStock(ctx, c.tenantID, sku)
	if err != nil {
		return nil, fmt.Errorf("fetching stock for %s: %w", sku, err)
	}
	candidates := make([]*domain.LocationStock, 0, len(stock))
	for i := range stock {
		candidates = append(candidates, &stock[i])
	}
	c.bySKU[sku] = candidates
	return candidates, nil
}

// resolve pins one demand to locations. A single location that can serve the
// whole demand is always preferred; only when none can is the demand split
// greedily across locations.
func (c *stockCache) resolve(ctx context.Context, demand skuDemand) ([]resolvedPick, error) {
	candidates, err := c.candidates(ctx, demand.sku)
	if err != nil {
		return nil, err
	}

	if best := bestSingleLocation(candidates, demand.qty); best != nil {
		best.Available -= demand.qty
		return []resolvedPick{{demand: demand, qty: demand.qty, location: *best}}, nil
	}

	return splitAcrossLocations(candidates, demand)
}

// bestSingleLocation finds the location that can serve the full quantity,
// preferring hot velocity, then the tightest fit, then a stable ID tiebreak.
func bestSingleLocation(candidates []*domain.LocationStock, qty int) *domain.LocationStock {
	var best *domain.LocationStock
	for _, candidate := range candidates {
		if candidate.Available < qty {
			continue
		}
		if best == nil || betterFit(candidate, best, qty) {
			best = candidate
		}
	}
	return best
}

func betterFit(a, b *domain.LocationStock, qty int) bool {
	if a.Velocity.Rank() != b.Velocity.Rank() {
		return a.Velocity.Rank() < b.Velocity.Rank()
	}
	if la, lb := a.Available-qty, b.Available-qty; la != lb {
		return la < lb
	}
	return a.LocationID < b.LocationID
}

// splitAcrossLocations drains locations greedily, hot zones and fuller
// locations first, until the demand is covered.
func splitAcrossLocations(candidates []*domain.LocationStock, demand skuDemand) ([]resolvedPick, error) {
	sorted := make([]*domain.LocationStock, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Available > 0 {
			sorted = append(sorted, candidate)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Velocity.Rank() != sorted[j].Velocity.Rank() {
			return sorted[i].Velocity.Rank() < sorted[j].Velocity.Rank()
		}
		if sorted[i].Available != sorted[j].Available {
			return sorted[i].Available > sorted[j].Available
		}
		return sorted[i].LocationID < sorted[j].LocationID
	})

	remaining := demand.qty
	picks := make([]resolvedPick, 0, 2)
	for _, candidate := range sorted {
		if remaining == 0 {
			break
		}
		take := candidate.Available
		if take > remaining {
			take = remaining
		}
		candidate.Available -= take
		remaining -= take
		picks = append(picks, resolvedPick{demand: demand, qty: take, location: *candidate})
	}

	if remaining > 0 {
		return nil, &domain.StockExhaustedError{SKU: demand.sku, Short: remaining}
	}
	return picks, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
