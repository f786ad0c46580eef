package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
	"github.com/wms-platform/wave-planning-service/pkg/metrics"
	mongoclient "github.com/wms-platform/wave-planning-service/pkg/mongodb"
)

const (
	collWaves      = "waves"
	collWaveOrders = "wave_orders"
	collPickTasks  = "pick_tasks"
)

// WaveRepository is the MongoDB implementation of domain.WaveRepository.
// Wave, order links and pick tasks live in separate collections and are
// written together inside multi-document transactions. The partial unique
// index on active order links is what enforces one active wave per order.
type WaveRepository struct {
	client  *mongoclient.Client
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewWaveRepository creates the repository and ensures its indexes.
func NewWaveRepository(ctx context.Context, client *mongoclient.Client, m *metrics.Metrics, logger *logging.Logger) (*WaveRepository, error) {
	repo := &WaveRepository{
		client:  client,
		metrics: m,
		logger:  logger.WithComponent("wave-repository"),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensuring indexes: %w", err)
	}
	return repo, nil
}

func (r *WaveRepository) ensureIndexes(ctx context.Context) error {
	db := r.client.Database()

	_, err := db.Collection(collWaves).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "waveId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("waves indexes: %w", err)
	}

	// One active wave per order, enforced by the storage engine. Inactive
	// links (completed or cancelled waves) are kept for history and do not
	// participate in the constraint.
	_, err = db.Collection(collWaveOrders).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "active", Value: true}}),
		},
		{
			Keys: bson.D{{Key: "waveId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("wave_orders indexes: %w", err)
	}

	_, err = db.Collection(collPickTasks).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "waveId", Value: 1}, {Key: "sequence", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("pick_tasks indexes: %w", err)
	}

	return nil
}

// CreateWave atomically persists the wave, its order links and pick tasks.
func (r *WaveRepository) CreateWave(ctx context.Context, wave *domain.Wave, links []domain.WaveOrderLink, tasks []domain.PickTask) error {
	defer r.observe(collWaves, "createWave")()

	db := r.client.Database()
	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := db.Collection(collWaves).InsertOne(sessCtx, wave); err != nil {
			return err
		}

		linkDocs := make([]interface{}, 0, len(links))
		for _, link := range links {
			linkDocs = append(linkDocs, link)
		}
		if _, err := db.Collection(collWaveOrders).InsertMany(sessCtx, linkDocs); err != nil {
			return err
		}

		if len(tasks) > 0 {
			taskDocs := make([]interface{}, 0, len(tasks))
			for _, task := range tasks {
				taskDocs = append(taskDocs, task)
			}
			if _, err := db.Collection(collPickTasks).InsertMany(sessCtx, taskDocs); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", domain.ErrOrderAlreadyWaved, err)
		}
		return fmt.Errorf("create wave transaction: %w", err)
	}

	r.logger.Debug("wave persisted", "waveId", wave.WaveID, "links", len(links), "tasks", len(tasks))
	return nil
}

// FindByID returns the wave, or (nil, nil) when it does not exist.
func (r *WaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	defer r.observe(collWaves, "findOne")()

	var wave domain.Wave
	err := r.client.Database().Collection(collWaves).
		FindOne(ctx, bson.M{"waveId": waveID}).Decode(&wave)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding wave %s: %w", waveID, err)
	}
	return &wave, nil
}

// FindActive returns a tenant's planned and in-progress waves.
func (r *WaveRepository) FindActive(ctx context.Context, tenantID string) ([]*domain.Wave, error) {
	return r.findWaves(ctx, bson.M{
		"tenantId": tenantID,
		"status": bson.M{"$in": []domain.WaveStatus{
			domain.WaveStatusPlanned, domain.WaveStatusInProgress,
		}},
	})
}

// FindByStatus returns a tenant's waves in the given status.
func (r *WaveRepository) FindByStatus(ctx context.Context, tenantID string, status domain.WaveStatus) ([]*domain.Wave, error) {
	return r.findWaves(ctx, bson.M{"tenantId": tenantID, "status": status})
}

// FindByOrderID returns every wave the order has ever been linked to.
func (r *WaveRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.Wave, error) {
	defer r.observe(collWaveOrders, "find")()

	cursor, err := r.client.Database().Collection(collWaveOrders).
		Find(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return nil, fmt.Errorf("finding links for order %s: %w", orderID, err)
	}
	var links []domain.WaveOrderLink
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decoding links: %w", err)
	}
	if len(links) == 0 {
		return []*domain.Wave{}, nil
	}

	waveIDs := make([]string, 0, len(links))
	for _, link := range links {
		waveIDs = append(waveIDs, link.WaveID)
	}
	return r.findWaves(ctx, bson.M{"waveId": bson.M{"$in": waveIDs}})
}

func (r *WaveRepository) findWaves(ctx context.Context, filter bson.M) ([]*domain.Wave, error) {
	defer r.observe(collWaves, "find")()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.client.Database().Collection(collWaves).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding waves: %w", err)
	}
	waves := make([]*domain.Wave, 0)
	if err := cursor.All(ctx, &waves); err != nil {
		return nil, fmt.Errorf("decoding waves: %w", err)
	}
	return waves, nil
}

// FindTasks returns a wave's pick tasks in execution sequence.
func (r *WaveRepository) FindTasks(ctx context.Context, waveID string) ([]domain.PickTask, error) {
	defer r.observe(collPickTasks, "find")()

	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	cursor, err := r.client.Database().Collection(collPickTasks).
		Find(ctx, bson.M{"waveId": waveID}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding tasks for wave %s: %w", waveID, err)
	}
	tasks := make([]domain.PickTask, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	return tasks, nil
}

// FindTask returns one task of a wave, or (nil, nil) when missing.
func (r *WaveRepository) FindTask(ctx context.Context, waveID, taskID string) (*domain.PickTask, error) {
	defer r.observe(collPickTasks, "findOne")()

	var task domain.PickTask
	err := r.client.Database().Collection(collPickTasks).
		FindOne(ctx, bson.M{"waveId": waveID, "taskId": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding task %s: %w", taskID, err)
	}
	return &task, nil
}

// CountOpenTasks counts the wave's pending and in-progress tasks.
func (r *WaveRepository) CountOpenTasks(ctx context.Context, waveID string) (int64, error) {
	defer r.observe(collPickTasks, "count")()

	count, err := r.client.Database().Collection(collPickTasks).CountDocuments(ctx, bson.M{
		"waveId": waveID,
		"status": bson.M{"$in": []domain.PickTaskStatus{
			domain.PickTaskStatusPending, domain.PickTaskStatusInProgress,
		}},
	})
	if err != nil {
		return 0, fmt.Errorf("counting open tasks: %w", err)
	}
	return count, nil
}

// UpdateWaveStatus persists a lifecycle transition, optionally releasing the
// wave's order claims in the same transaction. The replace is guarded by the
// expected prior status so a transition validated against a stale snapshot
// can never overwrite one that committed in between.
func (r *WaveRepository) UpdateWaveStatus(ctx context.Context, wave *domain.Wave, from domain.WaveStatus, releaseOrders bool) error {
	defer r.observe(collWaves, "updateStatus")()

	db := r.client.Database()
	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := db.Collection(collWaves).
			ReplaceOne(sessCtx, bson.M{"waveId": wave.WaveID, "status": from}, wave)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			count, err := db.Collection(collWaves).
				CountDocuments(sessCtx, bson.M{"waveId": wave.WaveID})
			if err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrWaveNotFound
			}
			return domain.ErrStaleWaveStatus
		}

		if releaseOrders {
			_, err = db.Collection(collWaveOrders).UpdateMany(sessCtx,
				bson.M{"waveId": wave.WaveID},
				bson.M{"$set": bson.M{"active": false}})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update wave status transaction: %w", err)
	}
	return nil
}

// UpdateTask persists a pick task.
func (r *WaveRepository) UpdateTask(ctx context.Context, task *domain.PickTask) error {
	defer r.observe(collPickTasks, "replace")()

	result, err := r.client.Database().Collection(collPickTasks).
		ReplaceOne(ctx, bson.M{"taskId": task.TaskID}, task)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.TaskID, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrPickTaskNotFound
	}
	return nil
}

// ActiveOrderIDs reports which of the given orders are claimed by an active
// wave.
func (r *WaveRepository) ActiveOrderIDs(ctx context.Context, orderIDs []string) (map[string]bool, error) {
	claimed := make(map[string]bool, len(orderIDs))
	if len(orderIDs) == 0 {
		return claimed, nil
	}
	defer r.observe(collWaveOrders, "find")()

	cursor, err := r.client.Database().Collection(collWaveOrders).
		Find(ctx, bson.M{"orderId": bson.M{"$in": orderIDs}, "active": true})
	if err != nil {
		return nil, fmt.Errorf("finding active links: %w", err)
	}
	var links []domain.WaveOrderLink
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decoding links: %w", err)
	}
	for _, link := range links {
		claimed[link.OrderID] = true
	}
	return claimed, nil
}

// Delete removes the wave with its links and tasks in one transaction.
func (r *WaveRepository) Delete(ctx context.Context, waveID string) error {
	defer r.observe(collWaves, "delete")()

	db := r.client.Database()
	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := db.Collection(collWaves).DeleteOne(sessCtx, bson.M{"waveId": waveID})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return domain.ErrWaveNotFound
		}
		if _, err := db.Collection(collWaveOrders).DeleteMany(sessCtx, bson.M{"waveId": waveID}); err != nil {
			return err
		}
		if _, err := db.Collection(collPickTasks).DeleteMany(sessCtx, bson.M{"waveId": waveID}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete wave transaction: %w", err)
	}
	return nil
}

// observe records operation count and latency. Status is recorded as success
// unconditionally; failures already surface through error returns and logs.
func (r *WaveRepository) observe(collection, operation string) func() {
	if r.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		service := r.metrics.ServiceName()
		r.metrics.MongoOperations.WithLabelValues(service, collection, operation, "success").Inc()
		r.metrics.MongoOperationDuration.WithLabelValues(service, collection, operation).
			Observe(time.Since(start).Seconds())
	}
}
