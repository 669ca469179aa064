package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tackroom/fairshare/internal/config"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
	"github.com/tackroom/fairshare/pkg/memory"
)

// Tuesday 2026-08-25 12:00 UTC
var svcNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		GroupID:                "g1",
		DefaultAlgorithm:       "points_balance",
		MemoryHorizonDays:      90,
		ResetPolicy:            "rolling",
		DistributionWindowDays: 14,
		EscalationWindowDays:   7,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func seedMember(t *testing.T, store *memory.Store, id, name string) {
	t.Helper()
	err := store.UpsertMember(context.Background(), &model.Member{
		ID:          id,
		GroupID:     "g1",
		DisplayName: name,
		Status:      model.MemberActive,
	})
	require.NoError(t, err)
}

func seedRoster(t *testing.T, store *memory.Store) {
	t.Helper()
	seedMember(t, store, "m-a", "Anna")
	seedMember(t, store, "m-b", "Bengt")
	seedMember(t, store, "m-c", "Clara")
}

func retireMember(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	member, err := store.GetMember(context.Background(), "g1", id)
	require.NoError(t, err)
	member.Status = model.MemberInactive
	require.NoError(t, store.UpsertMember(context.Background(), member))
}

func seedOpenInstance(t *testing.T, store *memory.Store, id string, scheduledAt time.Time, points float64) {
	t.Helper()
	err := store.InsertInstances(context.Background(), []model.WorkInstance{{
		ID:              id,
		GroupID:         "g1",
		Kind:            model.KindRoutine,
		Title:           "Morning feed",
		ScheduledAt:     scheduledAt,
		DurationMinutes: 60,
		PointValue:      points,
		Status:          model.InstanceUnassigned,
	}})
	require.NoError(t, err)
}

func seedCompletedInstance(t *testing.T, store *memory.Store, id, memberID string, points float64, completedAt time.Time) {
	t.Helper()
	err := store.InsertInstances(context.Background(), []model.WorkInstance{{
		ID:               id,
		GroupID:          "g1",
		Kind:             model.KindRoutine,
		Title:            "Morning feed",
		ScheduledAt:      completedAt,
		DurationMinutes:  60,
		PointValue:       points,
		AssignedMemberID: memberID,
		Status:           model.InstanceCompleted,
		CompletedAt:      &completedAt,
	}})
	require.NoError(t, err)
}

func assertInstanceUnavailable(t *testing.T, err error) {
	t.Helper()
	assert.True(t, errors.Is(err, db.ErrInstanceUnavailable), "expected ErrInstanceUnavailable, got %v", err)
}

func TestPeriodWindowCoversWeekAndMonth(t *testing.T) {
	// Tuesday 2026-08-25: week runs Mon 24th to Mon 31st, month all of August
	from, to := periodWindow(svcNow)

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestPeriodWindowWeekSpansMonthBoundary(t *testing.T) {
	// Tuesday 2026-09-01: its ISO week starts Monday 31 August
	at := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	from, to := periodWindow(at)

	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestPeriodWindowSundayBelongsToPrecedingWeek(t *testing.T) {
	// Sunday 2026-08-30 closes the week that started Monday the 24th
	at := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	from, to := periodWindow(at)

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestTransitionOccasionRejectsIllegalMove(t *testing.T) {
	occasion := &model.SelectionOccasion{State: model.OccasionDraft}

	err := transitionOccasion(occasion, model.OccasionActive)
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, model.OccasionDraft, occasion.State)
}

func TestTransitionOccasionAppliesLegalMove(t *testing.T) {
	occasion := &model.SelectionOccasion{State: model.OccasionDraft}

	err := transitionOccasion(occasion, model.OccasionComputed)
	require.NoError(t, err)
	assert.Equal(t, model.OccasionComputed, occasion.State)
}
