package mongodb

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/wave-planning-service/internal/domain"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
	"github.com/wms-platform/wave-planning-service/pkg/metrics"
	"github.com/wms-platform/wave-planning-service/pkg/testutil"
)

func setupRepository(t *testing.T) *WaveRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client := testutil.StartMongoDB(t)

	logConfig := logging.DefaultConfig("test")
	logConfig.Output = io.Discard
	logger := logging.New(logConfig)

	repo, err := NewWaveRepository(context.Background(), client, metrics.New(metrics.DefaultConfig("test")), logger)
	require.NoError(t, err)
	return repo
}

func fixtureWave(t *testing.T, waveID string, orderIDs ...string) (*domain.Wave, []domain.WaveOrderLink, []domain.PickTask) {
	t.Helper()
	wave, err := domain.NewWave(waveID, "W-20260831-"+waveID, "tenant-1", "op-1",
		domain.StrategyBatchPicking, orderIDs)
	require.NoError(t, err)

	tasks := []domain.PickTask{
		{
			TaskID:    waveID + "-task-1",
			WaveID:    waveID,
			TenantID:  "tenant-1",
			OrderIDs:  orderIDs,
			SKU:       "SKU001",
			Quantity:  5,
			Zone:      "A",
			Sequence:  1,
			Status:    domain.PickTaskStatusPending,
			CreatedAt: time.Now().UTC(),
		},
		{
			TaskID:    waveID + "-task-2",
			WaveID:    waveID,
			TenantID:  "tenant-1",
			OrderIDs:  orderIDs,
			SKU:       "SKU002",
			Quantity:  2,
			Zone:      "B",
			Sequence:  2,
			Status:    domain.PickTaskStatusPending,
			CreatedAt: time.Now().UTC(),
		},
	}
	wave.PickCount = len(tasks)
	return wave, domain.NewWaveOrderLinks(wave), tasks
}

func TestWaveRepositoryRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	wave, links, tasks := fixtureWave(t, "wave-rt", "ord-1", "ord-2")
	require.NoError(t, repo.CreateWave(ctx, wave, links, tasks))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "wave-rt")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, wave.WaveNumber, found.WaveNumber)
		assert.Equal(t, domain.WaveStatusPlanned, found.Status)
		assert.ElementsMatch(t, []string{"ord-1", "ord-2"}, found.OrderIDs)
	})

	t.Run("missing wave is nil nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "wave-missing")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("tasks come back in sequence", func(t *testing.T) {
		found, err := repo.FindTasks(ctx, "wave-rt")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, 1, found[0].Sequence)
		assert.Equal(t, 2, found[1].Sequence)
	})

	t.Run("open task count", func(t *testing.T) {
		count, err := repo.CountOpenTasks(ctx, "wave-rt")
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("active claims are visible", func(t *testing.T) {
		claimed, err := repo.ActiveOrderIDs(ctx, []string{"ord-1", "ord-2", "ord-free"})
		require.NoError(t, err)
		assert.True(t, claimed["ord-1"])
		assert.True(t, claimed["ord-2"])
		assert.False(t, claimed["ord-free"])
	})

	t.Run("find by order id", func(t *testing.T) {
		waves, err := repo.FindByOrderID(ctx, "ord-1")
		require.NoError(t, err)
		require.Len(t, waves, 1)
		assert.Equal(t, "wave-rt", waves[0].WaveID)
	})
}

func TestWaveRepositoryOrderClaimConstraint(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first, firstLinks, firstTasks := fixtureWave(t, "wave-a", "ord-shared", "ord-only-a")
	require.NoError(t, repo.CreateWave(ctx, first, firstLinks, firstTasks))

	t.Run("second wave claiming the same order is rejected", func(t *testing.T) {
		second, secondLinks, secondTasks := fixtureWave(t, "wave-b", "ord-shared")
		err := repo.CreateWave(ctx, second, secondLinks, secondTasks)
		require.ErrorIs(t, err, domain.ErrOrderAlreadyWaved)

		// The rejected transaction must leave nothing behind.
		found, findErr := repo.FindByID(ctx, "wave-b")
		require.NoError(t, findErr)
		assert.Nil(t, found)
		tasks, tasksErr := repo.FindTasks(ctx, "wave-b")
		require.NoError(t, tasksErr)
		assert.Empty(t, tasks)
	})

	t.Run("cancelling releases the orders for re-waving", func(t *testing.T) {
		require.NoError(t, first.Cancel("test release"))
		require.NoError(t, repo.UpdateWaveStatus(ctx, first, domain.WaveStatusPlanned, true))

		claimed, err := repo.ActiveOrderIDs(ctx, []string{"ord-shared", "ord-only-a"})
		require.NoError(t, err)
		assert.False(t, claimed["ord-shared"])
		assert.False(t, claimed["ord-only-a"])

		second, secondLinks, secondTasks := fixtureWave(t, "wave-b2", "ord-shared")
		assert.NoError(t, repo.CreateWave(ctx, second, secondLinks, secondTasks))
	})
}

func TestWaveRepositoryStatusQueries(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	planned, plannedLinks, plannedTasks := fixtureWave(t, "wave-planned", "ord-p1")
	require.NoError(t, repo.CreateWave(ctx, planned, plannedLinks, plannedTasks))

	started, startedLinks, startedTasks := fixtureWave(t, "wave-started", "ord-s1")
	require.NoError(t, repo.CreateWave(ctx, started, startedLinks, startedTasks))
	require.NoError(t, started.Start())
	require.NoError(t, repo.UpdateWaveStatus(ctx, started, domain.WaveStatusPlanned, false))

	done, doneLinks, doneTasks := fixtureWave(t, "wave-done", "ord-d1")
	require.NoError(t, repo.CreateWave(ctx, done, doneLinks, doneTasks))
	require.NoError(t, done.Start())
	require.NoError(t, done.Complete())
	require.NoError(t, repo.UpdateWaveStatus(ctx, done, domain.WaveStatusPlanned, true))

	t.Run("active excludes terminal waves", func(t *testing.T) {
		waves, err := repo.FindActive(ctx, "tenant-1")
		require.NoError(t, err)
		ids := make([]string, 0, len(waves))
		for _, wave := range waves {
			ids = append(ids, wave.WaveID)
		}
		assert.ElementsMatch(t, []string{"wave-planned", "wave-started"}, ids)
	})

	t.Run("by status", func(t *testing.T) {
		waves, err := repo.FindByStatus(ctx, "tenant-1", domain.WaveStatusCompleted)
		require.NoError(t, err)
		require.Len(t, waves, 1)
		assert.Equal(t, "wave-done", waves[0].WaveID)
	})
}

func TestWaveRepositoryStatusWriteIsGuarded(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	wave, links, tasks := fixtureWave(t, "wave-guard", "ord-g1")
	require.NoError(t, repo.CreateWave(ctx, wave, links, tasks))

	// Two readers load the same planned snapshot.
	winner, err := repo.FindByID(ctx, "wave-guard")
	require.NoError(t, err)
	loser, err := repo.FindByID(ctx, "wave-guard")
	require.NoError(t, err)

	require.NoError(t, winner.Start())
	require.NoError(t, winner.Complete())
	require.NoError(t, repo.UpdateWaveStatus(ctx, winner, domain.WaveStatusPlanned, false))

	t.Run("stale snapshot cannot overwrite a committed transition", func(t *testing.T) {
		require.NoError(t, loser.Cancel("too late"))
		err := repo.UpdateWaveStatus(ctx, loser, domain.WaveStatusPlanned, true)
		require.ErrorIs(t, err, domain.ErrStaleWaveStatus)

		stored, findErr := repo.FindByID(ctx, "wave-guard")
		require.NoError(t, findErr)
		assert.Equal(t, domain.WaveStatusCompleted, stored.Status)

		claimed, claimErr := repo.ActiveOrderIDs(ctx, []string{"ord-g1"})
		require.NoError(t, claimErr)
		assert.True(t, claimed["ord-g1"])
	})

	t.Run("missing wave is still not found", func(t *testing.T) {
		ghost, _, _ := fixtureWave(t, "wave-ghost", "ord-ghost")
		require.NoError(t, ghost.Start())
		err := repo.UpdateWaveStatus(ctx, ghost, domain.WaveStatusPlanned, false)
		require.ErrorIs(t, err, domain.ErrWaveNotFound)
	})
}

func TestWaveRepositoryTaskUpdates(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	wave, links, tasks := fixtureWave(t, "wave-tasks", "ord-t1")
	require.NoError(t, repo.CreateWave(ctx, wave, links, tasks))

	task, err := repo.FindTask(ctx, "wave-tasks", "wave-tasks-task-1")
	require.NoError(t, err)
	require.NotNil(t, task)

	require.NoError(t, task.Start("picker-1"))
	require.NoError(t, task.Complete(5, ""))
	require.NoError(t, repo.UpdateTask(ctx, task))

	updated, err := repo.FindTask(ctx, "wave-tasks", "wave-tasks-task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PickTaskStatusCompleted, updated.Status)
	assert.Equal(t, 5, updated.QuantityPicked)

	count, err := repo.CountOpenTasks(ctx, "wave-tasks")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestWaveRepositoryDelete(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	wave, links, tasks := fixtureWave(t, "wave-del", "ord-del")
	require.NoError(t, repo.CreateWave(ctx, wave, links, tasks))
	require.NoError(t, repo.Delete(ctx, "wave-del"))

	found, err := repo.FindByID(ctx, "wave-del")
	require.NoError(t, err)
	assert.Nil(t, found)

	remaining, err := repo.FindTasks(ctx, "wave-del")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	claimed, err := repo.ActiveOrderIDs(ctx, []string{"ord-del"})
	require.NoError(t, err)
	assert.False(t, claimed["ord-del"])

	assert.ErrorContains(t, repo.Delete(ctx, "wave-del"), "not found")
}
