//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/craftline/webhook-gateway/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()
	repo := CreateTestRepository(t, rc.Addr)
	defer repo.Close(ctx)

	now := time.Now().Truncate(time.Second)
	d := webhook.Delivery{
		ID:        GenerateID(t, 1),
		EventName: "order.completed",
		Status:    webhook.StatusSuccess,
		RequestID: "req-1",
		Outcome:   webhook.Received,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := repo.Store(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, d.ID, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, d.EventName, got.EventName)
	assert.Equal(t, webhook.StatusSuccess, got.Status)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, webhook.Received, got.Outcome)
	assert.Equal(t, 0, got.Attempts)
	assert.Equal(t, now.Unix(), got.CreatedAt.Unix())
}

func TestRepository_GetNotFound(t *testing.T) {
	ctx := context.Background()
	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()
	repo := CreateTestRepository(t, rc.Addr)
	defer repo.Close(ctx)

	_, err := repo.Get(ctx, "missing-delivery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery not found")
}

func TestRepository_UpdateOutcome(t *testing.T) {
	ctx := context.Background()
	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()
	repo := CreateTestRepository(t, rc.Addr)
	defer repo.Close(ctx)

	now := time.Now()
	d := webhook.Delivery{
		ID:        GenerateID(t, 2),
		EventName: "order.completed",
		Status:    webhook.StatusSuccess,
		Outcome:   webhook.Received,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := repo.Store(ctx, d)
	require.NoError(t, err)

	err = repo.UpdateOutcome(ctx, d.ID, webhook.Retrying, 1, "handler timeout")
	require.NoError(t, err)

	got, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, webhook.Retrying, got.Outcome)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "handler timeout", got.LastError)

	t.Run("counters follow the outcome transitions", func(t *testing.T) {
		counts, err := repo.CountByOutcome(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["retrying"])
		assert.Equal(t, int64(0), counts["received"])
	})

	t.Run("unknown delivery fails", func(t *testing.T) {
		err := repo.UpdateOutcome(ctx, "missing-delivery", webhook.Delivered, 1, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delivery not found")
	})
}

func TestRepository_ListByEvent(t *testing.T) {
	ctx := context.Background()
	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()
	repo := CreateTestRepository(t, rc.Addr)
	defer repo.Close(ctx)

	now := time.Now()
	for i := 0; i < 3; i++ {
		d := webhook.Delivery{
			ID:        GenerateID(t, i),
			EventName: "artwork.generated",
			Status:    webhook.StatusProcessing,
			Outcome:   webhook.Received,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := repo.Store(ctx, d)
		require.NoError(t, err)
	}

	deliveries, err := repo.ListByEvent(ctx, "artwork.generated", 2)
	require.NoError(t, err)
	assert.Len(t, deliveries, 2)
	for _, d := range deliveries {
		assert.Equal(t, "artwork.generated", d.EventName)
	}

	t.Run("unknown event returns empty list", func(t *testing.T) {
		deliveries, err := repo.ListByEvent(ctx, "unknown.event", 10)
		require.NoError(t, err)
		assert.Empty(t, deliveries)
	})
}
