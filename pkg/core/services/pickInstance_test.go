package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/memory"
)

// activeOccasion commits and activates an occasion over the given pool
func activeOccasion(t *testing.T, store *memory.Store, algorithm string, pool []string) *model.SelectionOccasion {
	t.Helper()
	ctx := context.Background()
	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), algorithm, pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)
	activated, err := ActivateOccasion(ctx, store, testConfig(), testLogger(), committed.Occasion.ID, svcNow)
	require.NoError(t, err)
	return activated.Occasion
}

func TestActivateOccasionFreezesOrder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2, 2)

	occasion := activeOccasion(t, store, "draft_pick", pool)
	assert.Equal(t, model.OccasionActive, occasion.State)
	assert.Equal(t, []string{"m-a", "m-b", "m-c"}, occasion.Order)
	assert.Equal(t, "m-a", occasion.TurnMember())

	// A second activation must fail; the order is frozen
	_, err := ActivateOccasion(ctx, store, testConfig(), testLogger(), occasion.ID, svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestActivateOccasionRecomputesAgainstCurrentRoster(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "draft_pick", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)
	assert.NotContains(t, committed.Occasion.Order, "m-d")

	// Dilba joins between compute and activation
	seedMember(t, store, "m-d", "Dilba")

	activated, err := ActivateOccasion(ctx, store, testConfig(), testLogger(), committed.Occasion.ID, svcNow)
	require.NoError(t, err)

	assert.Contains(t, activated.Occasion.Order, "m-d")
	assert.Contains(t, activated.Occasion.MemberIDs, "m-d")
}

func TestPickInstanceEnforcesTurn(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	// Everyone has zero history, so the order is alphabetical and Anna leads
	require.Equal(t, "m-a", occasion.TurnMember())

	_, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-b", pool[0], svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "turn")

	result, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[0], svcNow)
	require.NoError(t, err)
	assert.Equal(t, "m-b", result.NextTurn)

	inst, err := store.GetInstance(ctx, pool[0])
	require.NoError(t, err)
	assert.Equal(t, "m-a", inst.AssignedMemberID)
}

func TestPickInstanceRequiresActiveOccasion(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", pool, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)

	_, err = PickInstance(ctx, store, testLogger(), committed.Occasion.ID, "m-a", pool[0], svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPickInstanceOutsidePoolRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2)
	seedOpenInstance(t, store, "outsider", svcNow.AddDate(0, 0, 5), 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	_, err := PickInstance(ctx, store, testLogger(), occasion.ID, occasion.TurnMember(), "outsider", svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPickInstanceAlreadyPickedRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	first, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[0], svcNow)
	require.NoError(t, err)

	_, err = PickInstance(ctx, store, testLogger(), occasion.ID, first.NextTurn, pool[0], svcNow)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "already been picked")
}

func TestPickInstanceRoundRobinWrapsAround(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 1, 1, 1, 1)
	occasion := activeOccasion(t, store, "fair_rotation", pool)
	require.Equal(t, []string{"m-a", "m-b", "m-c"}, occasion.Order)

	for i, memberID := range []string{"m-a", "m-b", "m-c"} {
		result, err := PickInstance(ctx, store, testLogger(), occasion.ID, memberID, pool[i], svcNow)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, occasion.Order[i+1], result.NextTurn)
		} else {
			// The turn wraps back to the front of the order
			assert.Equal(t, "m-a", result.NextTurn)
		}
	}

	result, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[3], svcNow)
	require.NoError(t, err)
	assert.True(t, result.PoolExhausted)
	assert.Equal(t, 4, len(result.Occasion.Picks))
}

func TestPickInstanceDraftPickHoldsTurnUntilQuota(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	// Total 6 points across 3 members, so everyone owes 2
	pool := seedPool(t, store, 1, 1, 2, 2)
	occasion := activeOccasion(t, store, "draft_pick", pool)
	require.InDelta(t, 2.0, occasion.Quotas["m-a"], 0.0001)

	// Anna's first pick leaves her under quota, so she keeps the turn
	result, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[0], svcNow)
	require.NoError(t, err)
	assert.Equal(t, "m-a", result.NextTurn)

	// Her second pick meets the quota and hands the turn to Bengt
	result, err = PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[1], svcNow)
	require.NoError(t, err)
	assert.Equal(t, "m-b", result.NextTurn)

	// A single two point pick meets Bengt's quota outright
	result, err = PickInstance(ctx, store, testLogger(), occasion.ID, "m-b", pool[2], svcNow)
	require.NoError(t, err)
	assert.Equal(t, "m-c", result.NextTurn)
}

func TestPickInstanceDraftPickSuggestsNearestToQuota(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	// Quota is (1+2+3+6)/3 = 4 points each
	pool := seedPool(t, store, 1, 2, 3, 6)
	occasion := activeOccasion(t, store, "draft_pick", pool)

	// Anna takes the one pointer; with 3 owed, the 3 point instance is the
	// suggestion that lands her exactly on quota
	result, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[0], svcNow)
	require.NoError(t, err)
	assert.Equal(t, "m-a", result.NextTurn)
	require.NotNil(t, result.Suggested)
	assert.Equal(t, pool[2], result.Suggested.ID)
}

func TestPickInstanceLostRaceSurfacesUnavailable(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	pool := seedPool(t, store, 2, 2)
	occasion := activeOccasion(t, store, "points_balance", pool)

	// The instance is grabbed outside the occasion before the pick lands
	require.NoError(t, store.ClaimInstance(ctx, pool[0], "m-c"))

	_, err := PickInstance(ctx, store, testLogger(), occasion.ID, "m-a", pool[0], svcNow)
	require.Error(t, err)
	assertInstanceUnavailable(t, err)

	// The occasion survives the failed pick untouched
	stored, err := store.GetOccasion(ctx, occasion.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Picks)
	assert.Equal(t, "m-a", stored.TurnMember())
}
