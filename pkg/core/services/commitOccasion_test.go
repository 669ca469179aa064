package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/memory"
)

func seedPool(t *testing.T, store *memory.Store, points ...float64) []string {
	t.Helper()
	ids := make([]string, len(points))
	for i, p := range points {
		id := string(rune('a' + i))
		seedOpenInstance(t, store, id, svcNow.AddDate(0, 0, i+1), p)
		ids[i] = id
	}
	return ids
}

func TestCommitOccasionStoresComputedOrder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 3, 4)

	result, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "draft_pick", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)

	occasion := result.Occasion
	assert.Equal(t, model.OccasionComputed, occasion.State)
	assert.Equal(t, model.AlgorithmDraftPick, occasion.Algorithm)
	// No history yet, so the order is alphabetical by display name
	assert.Equal(t, []string{"m-a", "m-b", "m-c"}, occasion.Order)
	assert.InDelta(t, 3.0, occasion.Quotas["m-a"], 0.0001)
	assert.InDelta(t, 3.0, occasion.Quotas["m-b"], 0.0001)
	assert.InDelta(t, 3.0, occasion.Quotas["m-c"], 0.0001)

	stored, err := store.GetOccasion(ctx, occasion.ID)
	require.NoError(t, err)
	assert.Equal(t, occasion.Order, stored.Order)
	assert.Equal(t, model.OccasionComputed, stored.State)
}

func TestCommitOccasionDefaultsToConfiguredAlgorithm(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)

	result, err := CommitOccasion(context.Background(), store, testConfig(), testLogger(), "", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)

	assert.Equal(t, model.AlgorithmPointsBalance, result.Occasion.Algorithm)
	assert.Nil(t, result.Occasion.Quotas)
}

func TestCommitOccasionUnknownAlgorithmRejected(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)

	_, err := CommitOccasion(context.Background(), store, testConfig(), testLogger(), "bidding_war", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCommitOccasionEmptyPoolRejected(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)

	_, err := CommitOccasion(context.Background(), store, testConfig(), testLogger(), "draft_pick", nil, svcNow.AddDate(0, 0, 7), svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCommitOccasionAssignedPoolInstanceRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2)
	require.NoError(t, store.ClaimInstance(ctx, pool[0], "m-b"))

	_, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "draft_pick", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPreviewTurnOrderMatchesCommit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedCompletedInstance(t, store, "done-1", "m-a", 6, svcNow.AddDate(0, 0, -4))
	pool := seedPool(t, store, 2, 3)

	preview, err := PreviewTurnOrder(ctx, store, testConfig(), testLogger(), "points_balance", pool, svcNow)
	require.NoError(t, err)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)

	assert.Equal(t, preview.Order, committed.Occasion.Order)
}

func TestPreviewTurnOrderDoesNotPersist(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)

	_, err := PreviewTurnOrder(ctx, store, testConfig(), testLogger(), "fair_rotation", pool, svcNow)
	require.NoError(t, err)

	occasions, err := store.ListOccasions(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, occasions)
}

func TestPreviewTurnOrderPointsBalanceOrder(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)
	// Anna has carried the most, Clara has no history at all
	seedCompletedInstance(t, store, "done-1", "m-a", 6, svcNow.AddDate(0, 0, -4))
	seedCompletedInstance(t, store, "done-2", "m-b", 2, svcNow.AddDate(0, 0, -3))
	pool := seedPool(t, store, 2, 3)

	preview, err := PreviewTurnOrder(context.Background(), store, testConfig(), testLogger(), "points_balance", pool, svcNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"m-c", "m-b", "m-a"}, preview.Order)
	assert.Nil(t, preview.Quotas)
}
