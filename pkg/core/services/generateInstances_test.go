package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/memory"
)

func routineConfig() *config.Config {
	cfg := testConfig()
	cfg.Routines = []config.RoutineRule{
		{
			Name:            "Morning feed",
			RRule:           "FREQ=DAILY",
			StartTime:       "07:00",
			DurationMinutes: 60,
			PointValue:      2,
		},
	}
	return cfg
}

var (
	genFrom = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	genTo   = time.Date(2026, 8, 26, 23, 59, 0, 0, time.UTC)
)

func TestGenerateInstancesCreatesOccurrences(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	result, err := GenerateInstances(ctx, store, routineConfig(), testLogger(), genFrom, genTo, false)
	require.NoError(t, err)

	// Three days, one daily occurrence each
	assert.Len(t, result.Generated, 3)
	assert.Equal(t, 0, result.Skipped)

	stored, err := store.ListInstancesBetween(ctx, "g1", genFrom, genTo)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Morning feed", stored[0].Title)
	assert.Equal(t, model.InstanceUnassigned, stored[0].Status)
	assert.Equal(t, time.Date(2026, 8, 24, 7, 0, 0, 0, time.UTC), stored[0].ScheduledAt)
}

func TestGenerateInstancesIdempotent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	cfg := routineConfig()

	first, err := GenerateInstances(ctx, store, cfg, testLogger(), genFrom, genTo, false)
	require.NoError(t, err)
	require.Len(t, first.Generated, 3)

	second, err := GenerateInstances(ctx, store, cfg, testLogger(), genFrom, genTo, false)
	require.NoError(t, err)

	assert.Empty(t, second.Generated)
	assert.Equal(t, 3, second.Skipped)

	stored, err := store.ListInstancesBetween(ctx, "g1", genFrom, genTo)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestGenerateInstancesExtendsRange(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	cfg := routineConfig()

	_, err := GenerateInstances(ctx, store, cfg, testLogger(), genFrom, genTo, false)
	require.NoError(t, err)

	// Widening the range only adds the new days
	widerTo := genTo.AddDate(0, 0, 2)
	result, err := GenerateInstances(ctx, store, cfg, testLogger(), genFrom, widerTo, false)
	require.NoError(t, err)

	assert.Len(t, result.Generated, 2)
	assert.Equal(t, 3, result.Skipped)
}

func TestGenerateInstancesDryRun(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	result, err := GenerateInstances(ctx, store, routineConfig(), testLogger(), genFrom, genTo, true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Len(t, result.Generated, 3)

	stored, err := store.ListInstancesBetween(ctx, "g1", genFrom, genTo)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestGenerateInstancesNoRoutinesRejected(t *testing.T) {
	store := memory.NewStore()

	_, err := GenerateInstances(context.Background(), store, testConfig(), testLogger(), genFrom, genTo, false)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGenerateInstancesInvalidRangeRejected(t *testing.T) {
	store := memory.NewStore()

	_, err := GenerateInstances(context.Background(), store, routineConfig(), testLogger(), genTo, genFrom, false)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}
