package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
	"github.com/tackroom/fairshare/pkg/memory"
)

func TestCompleteOccasionWritesHistory(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	for i, memberID := range []string{"m-a", "m-b", "m-c"} {
		_, err := PickInstance(ctx, store, testLogger(), occasion.ID, memberID, pool[i], svcNow)
		require.NoError(t, err)
	}

	result, err := CompleteOccasion(ctx, store, testLogger(), occasion.ID, svcNow.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, model.OccasionCompleted, result.Occasion.State)
	require.NotNil(t, result.Occasion.CompletedAt)
	assert.Empty(t, result.Unpicked)

	history := result.History
	require.NotNil(t, history)
	assert.Equal(t, occasion.ID, history.OccasionID)
	assert.Equal(t, []string{"m-a", "m-b", "m-c"}, history.FinalOrder)
	assert.Equal(t, 1, history.SelectionsPerMember["m-a"])
	assert.InDelta(t, 2.0, history.PointsPickedPerMember["m-b"], 0.0001)

	latest, err := store.LatestHistory(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, history.ID, latest.ID)
}

func TestCompleteOccasionIdempotent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	first, err := CompleteOccasion(ctx, store, testLogger(), occasion.ID, svcNow)
	require.NoError(t, err)
	second, err := CompleteOccasion(ctx, store, testLogger(), occasion.ID, svcNow.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.False(t, first.AlreadyCompleted)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, first.History.ID, second.History.ID)
	assert.Equal(t, first.History.CompletedAt, second.History.CompletedAt)
}

func TestCompleteOccasionReportsUnpicked(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	_, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[0], svcNow)
	require.NoError(t, err)

	result, err := CompleteOccasion(ctx, store, testLogger(), occasion.ID, svcNow)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{pool[1], pool[2]}, result.Unpicked)
}

func TestCompleteOccasionRequiresActiveState(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)

	_, err = CompleteOccasion(ctx, store, testLogger(), committed.Occasion.ID, svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCompletedHistoryFeedsNextOccasion(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2)
	occasion := activeOccasion(t, store, "draft_pick", pool)
	require.Equal(t, []string{"m-a", "m-b", "m-c"}, occasion.Order)

	_, err := CompleteOccasion(ctx, store, testLogger(), occasion.ID, svcNow)
	require.NoError(t, err)

	// The next draft starts with last round's order reversed
	seedOpenInstance(t, store, "next-1", svcNow.AddDate(0, 0, 10), 2)
	next, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "draft_pick", []string{"next-1"}, svcNow.AddDate(0, 0, 14), svcNow.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.Equal(t, []string{"m-c", "m-b", "m-a"}, next.Occasion.Order)
	assert.Empty(t, next.Warnings)
}

func TestCancelOccasionRemovesComputed(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)

	err = CancelOccasion(ctx, store, testLogger(), committed.Occasion.ID)
	require.NoError(t, err)

	_, err = store.GetOccasion(ctx, committed.Occasion.ID)
	assert.True(t, errors.Is(err, db.ErrOccasionNotFound))
}

func TestCancelOccasionRejectsActive(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	err := CancelOccasion(ctx, store, testLogger(), occasion.ID)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	// Still there
	_, err = store.GetOccasion(ctx, occasion.ID)
	assert.NoError(t, err)
}
