package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/memory"
)

func TestListEscalationsFindsUnassignedInWindow(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "soon", svcNow.AddDate(0, 0, 2), 2)
	seedOpenInstance(t, store, "far", svcNow.AddDate(0, 0, 20), 2)
	seedOpenInstance(t, store, "covered", svcNow.AddDate(0, 0, 3), 2)
	require.NoError(t, store.ClaimInstance(ctx, "covered", "m-a"))

	result, err := ListEscalations(ctx, store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	require.Len(t, result.Escalations, 1)
	assert.Equal(t, "soon", result.Escalations[0].Instance.ID)
	assert.Equal(t, "", result.Escalations[0].OccasionID)
}

func TestListEscalationsFindsExpiredOccasionLeftovers(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	// Far enough out to miss the escalation window, so only the occasion
	// pathway can surface it
	seedOpenInstance(t, store, "leftover", svcNow.AddDate(0, 0, 20), 2)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", []string{"leftover"}, svcNow.AddDate(0, 0, -1), svcNow.AddDate(0, 0, -2))
	require.NoError(t, err)
	_, err = ActivateOccasion(ctx, store, testConfig(), testLogger(), committed.Occasion.ID, svcNow.AddDate(0, 0, -2))
	require.NoError(t, err)

	result, err := ListEscalations(ctx, store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	require.Len(t, result.Escalations, 1)
	assert.Equal(t, "leftover", result.Escalations[0].Instance.ID)
	assert.Equal(t, committed.Occasion.ID, result.Escalations[0].OccasionID)
}

func TestListEscalationsSkipsOpenOccasions(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "leftover", svcNow.AddDate(0, 0, 20), 2)

	// Occasion still open for picking
	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", []string{"leftover"}, svcNow.AddDate(0, 0, 7), svcNow)
	require.NoError(t, err)
	_, err = ActivateOccasion(ctx, store, testConfig(), testLogger(), committed.Occasion.ID, svcNow)
	require.NoError(t, err)

	result, err := ListEscalations(ctx, store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)
	assert.Empty(t, result.Escalations)
}

func TestListEscalationsDeduplicates(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	// Inside the window AND left behind by an expired occasion
	seedOpenInstance(t, store, "both", svcNow.AddDate(0, 0, 2), 2)

	committed, err := CommitOccasion(ctx, store, testConfig(), testLogger(), "points_balance", []string{"both"}, svcNow.AddDate(0, 0, -1), svcNow.AddDate(0, 0, -2))
	require.NoError(t, err)
	_, err = ActivateOccasion(ctx, store, testConfig(), testLogger(), committed.Occasion.ID, svcNow.AddDate(0, 0, -2))
	require.NoError(t, err)

	result, err := ListEscalations(ctx, store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	require.Len(t, result.Escalations, 1)
	assert.Equal(t, "both", result.Escalations[0].Instance.ID)
}
