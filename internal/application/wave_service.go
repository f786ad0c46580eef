package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	apperrors "github.com/wms-platform/wave-planning-service/pkg/errors"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
	"github.com/wms-platform/wave-planning-service/pkg/metrics"
)

// WaveService orchestrates wave planning and lifecycle operations. Events are
// published after the storage transaction commits; publish failures are
// logged, never surfaced to the caller.
type WaveService struct {
	repo      domain.WaveRepository
	selector  *EligibilitySelector
	optimizer *WaveOptimizer
	estimator domain.EstimatePolicy
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewWaveService creates a new wave service.
func NewWaveService(
	repo domain.WaveRepository,
	selector *EligibilitySelector,
	optimizer *WaveOptimizer,
	estimator domain.EstimatePolicy,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *WaveService {
	return &WaveService{
		repo:      repo,
		selector:  selector,
		optimizer: optimizer,
		estimator: estimator,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent("wave-service"),
	}
}

// CreateOptimizedWave plans and persists a new wave from the command's order
// selection.
func (s *WaveService) CreateOptimizedWave(ctx context.Context, cmd CreateWaveCommand) (*WaveCreationResultDTO, error) {
	strategy, err := domain.ParsePickingStrategy(cmd.Strategy)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error()).Wrap(err)
	}
	if cmd.OperatorID == "" {
		return nil, apperrors.ErrValidation("operator id is required")
	}
	if cmd.TenantID == "" {
		return nil, apperrors.ErrValidation("tenant id is required")
	}

	selection, err := s.selector.Select(ctx, cmd.Selection.ToFilter(cmd.TenantID))
	if err != nil {
		return nil, fmt.Errorf("selecting orders: %w", err)
	}
	if len(selection.Orders) == 0 {
		s.metrics.EmptySelections.Inc()
		return nil, apperrors.ErrEmptySelection("no orders matched the selection criteria")
	}

	waveID := uuid.NewString()
	waveNumber := newWaveNumber(strategy, waveID)

	tasks, err := s.optimizer.Plan(ctx, waveID, cmd.TenantID, strategy, selection.Orders)
	if err != nil {
		var exhausted *domain.StockExhaustedError
		if errors.As(err, &exhausted) {
			return nil, apperrors.ErrStockExhausted(exhausted.SKU).Wrap(err)
		}
		return nil, fmt.Errorf("planning wave: %w", err)
	}

	orderIDs := make([]string, 0, len(selection.Orders))
	totalUnits := 0
	for _, order := range selection.Orders {
		orderIDs = append(orderIDs, order.OrderID)
		totalUnits += order.TotalQuantity()
	}

	wave, err := domain.NewWave(waveID, waveNumber, cmd.TenantID, cmd.OperatorID, strategy, orderIDs)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error()).Wrap(err)
	}
	wave.PickCount = len(tasks)
	wave.EstimatedMinutes, wave.EstimatedDistance = s.estimator.Estimate(strategy, len(orderIDs), len(tasks), totalUnits)

	links := domain.NewWaveOrderLinks(wave)
	if err := s.repo.CreateWave(ctx, wave, links, tasks); err != nil {
		if errors.Is(err, domain.ErrOrderAlreadyWaved) {
			s.metrics.OrderClaimConflicts.Inc()
			return nil, apperrors.ErrConflict("an order in the selection was claimed by a concurrent wave").Wrap(err)
		}
		return nil, fmt.Errorf("persisting wave: %w", err)
	}

	s.metrics.WavesPlanned.WithLabelValues(s.metrics.ServiceName(), string(strategy)).Inc()
	s.metrics.PickTasksGenerated.Add(float64(len(tasks)))
	s.logger.Audit(ctx, "wave.create", "wave", wave.WaveID, cmd.OperatorID, map[string]any{
		"strategy":  string(strategy),
		"orders":    len(orderIDs),
		"pickTasks": len(tasks),
	})

	s.publish(ctx, domain.WavePlannedEvent{
		WaveID:     wave.WaveID,
		WaveNumber: wave.WaveNumber,
		TenantID:   wave.TenantID,
		Strategy:   wave.Strategy,
		OrderIDs:   wave.OrderIDs,
		PickCount:  wave.PickCount,
		Timestamp:  wave.CreatedAt,
	})

	return &WaveCreationResultDTO{
		Wave:            ToWaveDTO(wave),
		OrdersRequested: selection.Requested,
		OrdersIncluded:  len(orderIDs),
		PickCount:       len(tasks),
	}, nil
}

// UpdateWaveStatus applies a lifecycle transition to a wave. Cancelling
// releases the wave's orders for re-waving; completing with open tasks
// succeeds but carries a warning.
func (s *WaveService) UpdateWaveStatus(ctx context.Context, cmd UpdateWaveStatusCommand) (*WaveStatusUpdateResultDTO, error) {
	target := domain.WaveStatus(cmd.Status)
	if !target.IsValid() || target == domain.WaveStatusPlanned {
		return nil, apperrors.ErrValidation(fmt.Sprintf("invalid target status %q", cmd.Status))
	}

	wave, err := s.repo.FindByID(ctx, cmd.WaveID)
	if err != nil {
		return nil, fmt.Errorf("loading wave: %w", err)
	}
	if wave == nil {
		return nil, apperrors.ErrNotFound("wave")
	}

	var openTasks int64
	if target == domain.WaveStatusCompleted {
		openTasks, err = s.repo.CountOpenTasks(ctx, wave.WaveID)
		if err != nil {
			return nil, fmt.Errorf("counting open tasks: %w", err)
		}
	}

	from := wave.Status
	switch target {
	case domain.WaveStatusInProgress:
		err = wave.Start()
	case domain.WaveStatusCompleted:
		err = wave.Complete()
	case domain.WaveStatusCancelled:
		err = wave.Cancel(cmd.Reason)
	}
	if err != nil {
		var transErr *domain.TransitionError
		if errors.As(err, &transErr) {
			return nil, apperrors.ErrIllegalTransition(transErr.Error()).Wrap(err)
		}
		return nil, err
	}

	releaseOrders := target == domain.WaveStatusCancelled
	if err := s.repo.UpdateWaveStatus(ctx, wave, from, releaseOrders); err != nil {
		if errors.Is(err, domain.ErrStaleWaveStatus) {
			return nil, apperrors.ErrConflict("wave was transitioned by a concurrent request").Wrap(err)
		}
		if errors.Is(err, domain.ErrWaveNotFound) {
			return nil, apperrors.ErrNotFound("wave").Wrap(err)
		}
		return nil, fmt.Errorf("persisting wave status: %w", err)
	}

	s.metrics.WaveTransitions.WithLabelValues(s.metrics.ServiceName(), string(target)).Inc()
	s.logger.Audit(ctx, "wave.transition", "wave", wave.WaveID, wave.OperatorID, map[string]any{
		"status": string(target),
	})

	switch target {
	case domain.WaveStatusInProgress:
		s.publish(ctx, domain.WaveStartedEvent{
			WaveID:     wave.WaveID,
			TenantID:   wave.TenantID,
			OperatorID: wave.OperatorID,
			Timestamp:  *wave.StartedAt,
		})
	case domain.WaveStatusCompleted:
		s.publish(ctx, domain.WaveCompletedEvent{
			WaveID:    wave.WaveID,
			TenantID:  wave.TenantID,
			OpenTasks: int(openTasks),
			Timestamp: *wave.CompletedAt,
		})
	case domain.WaveStatusCancelled:
		s.publish(ctx, domain.WaveCancelledEvent{
			WaveID:           wave.WaveID,
			TenantID:         wave.TenantID,
			Reason:           cmd.Reason,
			ReleasedOrderIDs: wave.OrderIDs,
			Timestamp:        *wave.CompletedAt,
		})
	}

	result := &WaveStatusUpdateResultDTO{
		Wave:      ToWaveDTO(wave),
		OpenTasks: int(openTasks),
	}
	if target == domain.WaveStatusCompleted && openTasks > 0 {
		result.Warning = fmt.Sprintf("wave completed with %d open pick tasks", openTasks)
		s.logger.Warn("wave completed with open pick tasks",
			"waveId", wave.WaveID, "openTasks", openTasks)
	}
	return result, nil
}

// UpdatePickTask applies a status change to one of the wave's pick tasks.
func (s *WaveService) UpdatePickTask(ctx context.Context, cmd UpdatePickTaskCommand) (*PickTaskDTO, error) {
	target := domain.PickTaskStatus(cmd.Status)
	if !target.IsValid() || target == domain.PickTaskStatusPending {
		return nil, apperrors.ErrValidation(fmt.Sprintf("invalid target status %q", cmd.Status))
	}

	task, err := s.repo.FindTask(ctx, cmd.WaveID, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("loading pick task: %w", err)
	}
	if task == nil {
		return nil, apperrors.ErrNotFound("pick task")
	}

	switch target {
	case domain.PickTaskStatusInProgress:
		err = task.Start(cmd.PickerID)
	case domain.PickTaskStatusCompleted:
		picked := task.Quantity
		if cmd.QuantityPicked != nil {
			picked = *cmd.QuantityPicked
		}
		err = task.Complete(picked, cmd.Reason)
	case domain.PickTaskStatusError:
		err = task.Fail(cmd.Reason)
	}
	if err != nil {
		var transErr *domain.TaskTransitionError
		if errors.As(err, &transErr) {
			return nil, apperrors.ErrIllegalTransition(transErr.Error()).Wrap(err)
		}
		return nil, apperrors.ErrValidation(err.Error()).Wrap(err)
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("persisting pick task: %w", err)
	}

	s.publish(ctx, domain.PickTaskUpdatedEvent{
		TaskID:         task.TaskID,
		WaveID:         task.WaveID,
		TenantID:       task.TenantID,
		Status:         task.Status,
		QuantityPicked: task.QuantityPicked,
		AssignedTo:     task.AssignedTo,
		Timestamp:      time.Now().UTC(),
	})

	dto := ToPickTaskDTO(task)
	return &dto, nil
}

// GetWave returns a wave by ID.
func (s *WaveService) GetWave(ctx context.Context, waveID string) (*WaveDTO, error) {
	wave, err := s.repo.FindByID(ctx, waveID)
	if err != nil {
		return nil, fmt.Errorf("loading wave: %w", err)
	}
	if wave == nil {
		return nil, apperrors.ErrNotFound("wave")
	}
	dto := ToWaveDTO(wave)
	return &dto, nil
}

// ListActiveWaves returns all non-terminal waves for a tenant.
func (s *WaveService) ListActiveWaves(ctx context.Context, tenantID string) ([]WaveDTO, error) {
	waves, err := s.repo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing active waves: %w", err)
	}
	return ToWaveDTOs(waves), nil
}

// ListWavesByStatus returns a tenant's waves in the given status.
func (s *WaveService) ListWavesByStatus(ctx context.Context, tenantID, status string) ([]WaveDTO, error) {
	waveStatus := domain.WaveStatus(status)
	if !waveStatus.IsValid() {
		return nil, apperrors.ErrValidation(fmt.Sprintf("invalid wave status %q", status))
	}
	waves, err := s.repo.FindByStatus(ctx, tenantID, waveStatus)
	if err != nil {
		return nil, fmt.Errorf("listing waves by status: %w", err)
	}
	return ToWaveDTOs(waves), nil
}

// GetWaveTasks returns a wave's pick tasks in execution sequence.
func (s *WaveService) GetWaveTasks(ctx context.Context, waveID string) ([]PickTaskDTO, error) {
	wave, err := s.repo.FindByID(ctx, waveID)
	if err != nil {
		return nil, fmt.Errorf("loading wave: %w", err)
	}
	if wave == nil {
		return nil, apperrors.ErrNotFound("wave")
	}
	tasks, err := s.repo.FindTasks(ctx, waveID)
	if err != nil {
		return nil, fmt.Errorf("loading pick tasks: %w", err)
	}
	return ToPickTaskDTOs(tasks), nil
}

// GetWavesByOrder returns every wave, active or past, that an order belongs
// to.
func (s *WaveService) GetWavesByOrder(ctx context.Context, orderID string) ([]WaveDTO, error) {
	waves, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing waves for order: %w", err)
	}
	return ToWaveDTOs(waves), nil
}

// DeleteWave removes a wave that has not been released yet. Anything past
// planned must go through cancellation instead.
func (s *WaveService) DeleteWave(ctx context.Context, waveID string) error {
	wave, err := s.repo.FindByID(ctx, waveID)
	if err != nil {
		return fmt.Errorf("loading wave: %w", err)
	}
	if wave == nil {
		return apperrors.ErrNotFound("wave")
	}
	if wave.Status != domain.WaveStatusPlanned {
		return apperrors.ErrConflict("only planned waves can be deleted").Wrap(domain.ErrWaveNotDeletable)
	}
	if err := s.repo.Delete(ctx, waveID); err != nil {
		return fmt.Errorf("deleting wave: %w", err)
	}
	s.logger.Audit(ctx, "wave.delete", "wave", waveID, wave.OperatorID, nil)
	return nil
}

// PreviewEligibility runs order selection without creating a wave.
func (s *WaveService) PreviewEligibility(ctx context.Context, cmd PreviewEligibilityCommand) (*EligibilityPreviewDTO, error) {
	if cmd.TenantID == "" {
		return nil, apperrors.ErrValidation("tenant id is required")
	}

	selection, err := s.selector.Select(ctx, cmd.Selection.ToFilter(cmd.TenantID))
	if err != nil {
		return nil, fmt.Errorf("selecting orders: %w", err)
	}

	preview := &EligibilityPreviewDTO{
		TenantID: cmd.TenantID,
		Eligible: make([]EligibleOrderDTO, 0, len(selection.Orders)),
		Excluded: selection.Excluded,
	}
	if preview.Excluded == nil {
		preview.Excluded = []ExcludedOrderDTO{}
	}
	for _, order := range selection.Orders {
		units := order.TotalQuantity()
		preview.TotalUnits += units
		preview.Eligible = append(preview.Eligible, EligibleOrderDTO{
			OrderID:     order.OrderID,
			Priority:    order.Priority,
			PromiseDate: order.PromiseDate,
			Lines:       len(order.Lines),
			Units:       units,
		})
	}
	return preview, nil
}

func (s *WaveService) publish(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to publish event",
			"eventType", event.EventType(),
			"subject", event.Subject())
	}
}

var waveNumberPrefixes = map[domain.PickingStrategy]string{
	domain.StrategyBatchPicking:    "BAT",
	domain.StrategyZonePicking:     "ZON",
	domain.StrategyDiscretePicking: "DIS",
	domain.StrategyWavePicking:     "WAV",
}

// newWaveNumber builds the human-facing wave number: strategy prefix, date,
// short unique suffix.
func newWaveNumber(strategy domain.PickingStrategy, waveID string) string {
	prefix, ok := waveNumberPrefixes[strategy]
	if !ok {
		prefix = "WAV"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(waveID, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}
