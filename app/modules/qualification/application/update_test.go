package qualificationservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	qualificationdomain "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain"
	qualificationevents "github.com/Cadence-Arcade/rankcore/app/modules/qualification/domain/events"
	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

func nominatedDifficulty() *qualificationdb.Difficulty {
	d := unrankedDifficulty()
	d.Status = sharedtypes.StatusNominated
	d.NominatedAt = testNow.Add(-24 * time.Hour)
	d.Modifiers = qualificationdomain.DefaultModifiers().Nominated()
	return d
}

func openQualification() *qualificationdb.Qualification {
	return &qualificationdb.Qualification{
		ID:            sharedtypes.NewReviewID(),
		LeaderboardID: "lb-1",
		Open:          true,
		Nominator:     "reviewer-1",
		MapperID:      "mapper-1",
		NominatedAt:   testNow.Add(-24 * time.Hour),
	}
}

func TestUpdateQualification_LogsChangeOnDiff(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return nominatedDifficulty(), nil
	}
	qualificationDB.GetOpenFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
		return openQualification(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	editor := sharedtypes.Caller{ID: "reviewer-2", Roles: []sharedtypes.Role{sharedtypes.RoleRankedTeam}}
	result, err := s.UpdateQualification(context.Background(), editor, "lb-1", qualificationevents.ReviewUpdate{
		Rankable: true,
		Stars:    8.1,
		Type:     "tech",
		Criteria: qualificationdomain.CriteriaMet,
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.UpdatedPayload)
	require.True(t, ok)
	assert.True(t, payload.ChangeLogged)
	assert.True(t, payload.Cascade.RecomputeLeaderboard)

	require.NotNil(t, qualificationDB.Updated)
	require.Len(t, qualificationDB.Updated.Changes, 1)
	change := qualificationDB.Updated.Changes[0]
	assert.Equal(t, sharedtypes.PlayerID("reviewer-2"), change.EditorID)
	assert.Equal(t, testNow, change.Timestamp)
	assert.InDelta(t, 7.2, change.OldStars, 1e-12)
	assert.InDelta(t, 8.1, change.NewStars, 1e-12)

	// The criteria verdict changed, so the editor becomes the checker.
	assert.Equal(t, sharedtypes.PlayerID("reviewer-2"), qualificationDB.Updated.CriteriaChecker)
	require.NotNil(t, difficultyDB.Updated)
	assert.InDelta(t, 8.1, difficultyDB.Updated.Stars, 1e-12)
}

func TestUpdateQualification_NoDiffNoChange(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return nominatedDifficulty(), nil
	}
	qualificationDB.GetOpenFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
		return openQualification(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	// Identical to current state.
	result, err := s.UpdateQualification(context.Background(), reviewerCaller(), "lb-1", qualificationevents.ReviewUpdate{
		Rankable: true,
		Stars:    7.2,
		Type:     "tech",
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.UpdatedPayload)
	require.True(t, ok)
	assert.False(t, payload.ChangeLogged)
	assert.False(t, payload.Cascade.RecomputeLeaderboard)
	assert.Empty(t, qualificationDB.Updated.Changes)
}

func TestUpdateQualification_RejectionWithdrawsModifiers(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return nominatedDifficulty(), nil
	}
	qualificationDB.GetOpenFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
		return openQualification(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	result, err := s.UpdateQualification(context.Background(), reviewerCaller(), "lb-1", qualificationevents.ReviewUpdate{
		Rankable:   false,
		Commentary: "does not meet the bar",
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.UpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, sharedtypes.StatusUnrankable, payload.Status)
	assert.True(t, payload.Cascade.RecomputeLeaderboard)

	require.NotNil(t, difficultyDB.Updated)
	assert.Equal(t, sharedtypes.StatusUnrankable, difficultyDB.Updated.Status)
	assert.Zero(t, difficultyDB.Updated.Stars)
	assert.True(t, difficultyDB.Updated.NominatedAt.IsZero())
	// Doubled modifiers return to their base values.
	assert.InDelta(t, qualificationdomain.DefaultSpeedBonus, difficultyDB.Updated.Modifiers.FS, 1e-12)
	assert.InDelta(t, qualificationdomain.DefaultNoFail, difficultyDB.Updated.Modifiers.NF, 1e-12)

	assert.False(t, qualificationDB.Updated.Open)
}

func TestUpdateQualification_JuniorBlockedOnQualified(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		d := nominatedDifficulty()
		d.Status = sharedtypes.StatusQualified
		return d, nil
	}
	qualificationDB.GetOpenFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
		return openQualification(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	junior := sharedtypes.Caller{ID: "junior-1", Roles: []sharedtypes.Role{sharedtypes.RoleJuniorRankedTeam}}
	result, err := s.UpdateQualification(context.Background(), junior, "lb-1", qualificationevents.ReviewUpdate{
		Rankable: true,
		Stars:    9,
	})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrUnauthorized)
	assert.NotContains(t, difficultyDB.Trace(), "Update")
}

func TestUpdateQualification_NonReviewerRejected(t *testing.T) {
	s := newTestService(NewFakeDifficultyRepository(), NewFakeQualificationRepository(), NewFakeReweightRepository())

	result, err := s.UpdateQualification(context.Background(), mapperCaller(), "lb-1", qualificationevents.ReviewUpdate{Rankable: true})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrUnauthorized)
}

func TestAllowQualification_MapperOnly(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	qualificationDB.GetOpenFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
		return openQualification(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	result, err := s.AllowQualification(context.Background(), mapperCaller(), "lb-1")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.True(t, qualificationDB.Updated.MapperAllowed)

	result, err = s.AllowQualification(context.Background(), sharedtypes.Caller{ID: "someone-else"}, "lb-1")
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrUnauthorized)
}
