package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
	"github.com/tackroom/fairshare/pkg/memory"
)

func TestClaimInstanceAssignsMember(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)

	result, err := ClaimInstance(ctx, store, testConfig(), testLogger(), "i1", "m-b")
	require.NoError(t, err)

	assert.Equal(t, "m-b", result.Instance.AssignedMemberID)
	assert.Equal(t, model.InstanceAssigned, result.Instance.Status)
	assert.Equal(t, "Bengt", result.Member.DisplayName)

	stored, err := store.GetInstance(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "m-b", stored.AssignedMemberID)
}

func TestClaimInstanceAlreadyTaken(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)
	require.NoError(t, store.ClaimInstance(ctx, "i1", "m-a"))

	_, err := ClaimInstance(ctx, store, testConfig(), testLogger(), "i1", "m-b")
	assertInstanceUnavailable(t, err)
}

func TestClaimInstanceUnknownMember(t *testing.T) {
	store := memory.NewStore()
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)

	_, err := ClaimInstance(context.Background(), store, testConfig(), testLogger(), "i1", "m-x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrMemberNotFound))
}

func TestClaimInstanceBlackoutRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	err := store.UpsertMember(ctx, &model.Member{
		ID:          "m-a",
		GroupID:     "g1",
		DisplayName: "Anna",
		Status:      model.MemberActive,
		Availability: []model.BlackoutRule{
			// Wednesday mornings are out
			{Weekday: time.Wednesday, Start: "06:00", End: "12:00"},
		},
	})
	require.NoError(t, err)
	// Wednesday 2026-08-26 09:00
	seedOpenInstance(t, store, "i1", time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), 2)

	_, err = ClaimInstance(ctx, store, testConfig(), testLogger(), "i1", "m-a")
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	stored, err := store.GetInstance(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, stored.Assigned())
}

func TestClaimInstanceWeeklyLimitRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	maxPerWeek := 1
	err := store.UpsertMember(ctx, &model.Member{
		ID:          "m-a",
		GroupID:     "g1",
		DisplayName: "Anna",
		Status:      model.MemberActive,
		Limits:      &model.Limits{MaxPerWeek: &maxPerWeek},
	})
	require.NoError(t, err)

	seedOpenInstance(t, store, "held", svcNow.AddDate(0, 0, 1), 2)
	require.NoError(t, store.ClaimInstance(ctx, "held", "m-a"))
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 2), 2)

	_, err = ClaimInstance(ctx, store, testConfig(), testLogger(), "i1", "m-a")
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestClaimInstanceInactiveMemberRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	err := store.UpsertMember(ctx, &model.Member{
		ID:          "m-a",
		GroupID:     "g1",
		DisplayName: "Anna",
		Status:      model.MemberInactive,
	})
	require.NoError(t, err)
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)

	_, err = ClaimInstance(ctx, store, testConfig(), testLogger(), "i1", "m-a")
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestReleaseInstanceReturnsToPool(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)
	require.NoError(t, store.ClaimInstance(ctx, "i1", "m-a"))

	result, err := ReleaseInstance(ctx, store, testLogger(), "i1", "m-a")
	require.NoError(t, err)

	assert.Equal(t, "m-a", result.ReleasedMember)
	assert.False(t, result.Instance.Assigned())

	// Claimable again
	_, err = ClaimInstance(ctx, store, testConfig(), testLogger(), "i1", "m-b")
	assert.NoError(t, err)
}

func TestReleaseInstanceByNonHolderRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)
	require.NoError(t, store.ClaimInstance(ctx, "i1", "m-a"))

	_, err := ReleaseInstance(ctx, store, testLogger(), "i1", "m-b")
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	stored, err := store.GetInstance(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "m-a", stored.AssignedMemberID)
}

func TestReleaseInstanceOperatorOverride(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedRoster(t, store)
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)
	require.NoError(t, store.ClaimInstance(ctx, "i1", "m-a"))

	result, err := ReleaseInstance(ctx, store, testLogger(), "i1", "")
	require.NoError(t, err)
	assert.Equal(t, "m-a", result.ReleasedMember)
}

func TestReleaseInstanceUnassignedIsNoop(t *testing.T) {
	store := memory.NewStore()
	seedOpenInstance(t, store, "i1", svcNow.AddDate(0, 0, 1), 2)

	result, err := ReleaseInstance(context.Background(), store, testLogger(), "i1", "m-a")
	require.NoError(t, err)
	assert.Equal(t, "", result.ReleasedMember)
	assert.False(t, result.Instance.Assigned())
}
