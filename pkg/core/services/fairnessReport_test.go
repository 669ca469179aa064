package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/memory"
)

func TestFairnessReportStandings(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)
	seedCompletedInstance(t, store, "done-1", "m-a", 4, svcNow.AddDate(0, 0, -10))
	seedCompletedInstance(t, store, "done-2", "m-a", 2, svcNow.AddDate(0, 0, -5))
	seedCompletedInstance(t, store, "done-3", "m-b", 2, svcNow.AddDate(0, 0, -3))

	result, err := FairnessReport(context.Background(), store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	require.Len(t, result.Standings, 3)
	// Heaviest carriers first
	assert.Equal(t, "m-a", result.Standings[0].Member.ID)
	assert.InDelta(t, 6.0, result.Standings[0].Points, 0.0001)
	assert.Equal(t, "m-b", result.Standings[1].Member.ID)
	assert.Equal(t, "m-c", result.Standings[2].Member.ID)
	assert.False(t, result.Standings[2].HasHistory)
	assert.True(t, result.Standings[0].HasHistory)

	// Points 6, 2, 0: population stddev about 2.494 against mean 8/3
	assert.InDelta(t, 6.46, result.FairnessIndex, 0.01)
}

func TestFairnessReportEvenSpreadScoresHundred(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)
	seedCompletedInstance(t, store, "done-1", "m-a", 3, svcNow.AddDate(0, 0, -6))
	seedCompletedInstance(t, store, "done-2", "m-b", 3, svcNow.AddDate(0, 0, -4))
	seedCompletedInstance(t, store, "done-3", "m-c", 3, svcNow.AddDate(0, 0, -2))

	result, err := FairnessReport(context.Background(), store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, result.FairnessIndex, 0.0001)
}

func TestFairnessReportHorizonCutoff(t *testing.T) {
	store := memory.NewStore()
	seedRoster(t, store)
	// Outside the 90 day rolling horizon
	seedCompletedInstance(t, store, "ancient", "m-a", 50, svcNow.AddDate(0, 0, -120))

	result, err := FairnessReport(context.Background(), store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	for _, standing := range result.Standings {
		assert.Equal(t, 0.0, standing.Points)
		assert.False(t, standing.HasHistory)
	}
	assert.InDelta(t, 100.0, result.FairnessIndex, 0.0001)
	assert.Equal(t, svcNow.AddDate(0, 0, -90), result.HorizonStart)
}

func TestFairnessReportIgnoresInactiveMembers(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	retireMember(t, store, "m-c")

	result, err := FairnessReport(ctx, store, testConfig(), testLogger(), svcNow)
	require.NoError(t, err)

	require.Len(t, result.Standings, 2)
	for _, standing := range result.Standings {
		assert.NotEqual(t, "m-c", standing.Member.ID)
	}
}
