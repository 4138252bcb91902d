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

func rankedDifficulty() *qualificationdb.Difficulty {
	d := unrankedDifficulty()
	d.Status = sharedtypes.StatusRanked
	d.RankedAt = testNow.Add(-30 * 24 * time.Hour)
	return d
}

func proposal() ReweightProposal {
	return ReweightProposal{
		LeaderboardID: "lb-1",
		Keep:          true,
		Stars:         6.8,
		Type:          "acc",
		Modifiers:     qualificationdomain.DefaultModifiers(),
		Criteria:      qualificationdomain.CriteriaMet,
		Commentary:    "stars were inflated",
	}
}

func TestOpenReweight_CreatesRecord(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return rankedDifficulty(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	result, err := s.OpenReweight(context.Background(), reviewerCaller(), proposal())

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.ReweightOpenedPayload)
	require.True(t, ok)
	assert.False(t, payload.Reopened)

	require.NotNil(t, reweightDB.Inserted)
	assert.Equal(t, sharedtypes.PlayerID("reviewer-1"), reweightDB.Inserted.Author)
	assert.Equal(t, testNow, reweightDB.Inserted.OpenedAt)
	assert.False(t, reweightDB.Inserted.Finished)
	assert.InDelta(t, 6.8, reweightDB.Inserted.Stars, 1e-12)
}

func TestOpenReweight_EditsExistingWithAudit(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return rankedDifficulty(), nil
	}
	reweightDB.GetUnfinishedFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Reweight, error) {
		return &qualificationdb.Reweight{
			ID:            sharedtypes.NewReviewID(),
			LeaderboardID: leaderboardID,
			Author:        "reviewer-1",
			Keep:          true,
			Stars:         7.2,
			Type:          "tech",
			Modifiers:     qualificationdomain.DefaultModifiers(),
			OpenedAt:      testNow.Add(-time.Hour),
		}, nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	editor := sharedtypes.Caller{ID: "reviewer-2", Roles: []sharedtypes.Role{sharedtypes.RoleRankedTeam}}
	result, err := s.OpenReweight(context.Background(), editor, proposal())

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.ReweightOpenedPayload)
	require.True(t, ok)
	assert.True(t, payload.Reopened)
	assert.True(t, payload.ChangeLogged)

	require.NotNil(t, reweightDB.Updated)
	require.Len(t, reweightDB.Updated.Changes, 1)
	assert.Equal(t, sharedtypes.PlayerID("reviewer-2"), reweightDB.Updated.Changes[0].EditorID)
	assert.InDelta(t, 6.8, reweightDB.Updated.Stars, 1e-12)
	assert.Nil(t, reweightDB.Inserted)
}

func TestOpenReweight_OnlyRankedEligible(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return nominatedDifficulty(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	result, err := s.OpenReweight(context.Background(), reviewerCaller(), proposal())

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrConflict)
	assert.Empty(t, reweightDB.Trace())
}

func TestOpenReweight_NonReviewerRejected(t *testing.T) {
	s := newTestService(NewFakeDifficultyRepository(), NewFakeQualificationRepository(), NewFakeReweightRepository())

	result, err := s.OpenReweight(context.Background(), mapperCaller(), proposal())

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrUnauthorized)
}

func TestApproveReweight_KeepAppliesProposal(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return rankedDifficulty(), nil
	}
	reweightDB.GetUnfinishedFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Reweight, error) {
		return &qualificationdb.Reweight{
			ID:            sharedtypes.NewReviewID(),
			LeaderboardID: leaderboardID,
			Author:        "reviewer-1",
			Keep:          true,
			Stars:         6.8,
			Type:          "acc",
			Modifiers:     qualificationdomain.DefaultModifiers(),
			OpenedAt:      testNow.Add(-time.Hour),
		}, nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	approver := sharedtypes.Caller{ID: "reviewer-2", Roles: []sharedtypes.Role{sharedtypes.RoleRankedTeam}}
	result, err := s.ApproveReweight(context.Background(), approver, "lb-1")

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.ReweightApprovedPayload)
	require.True(t, ok)
	assert.True(t, payload.Kept)
	assert.Equal(t, sharedtypes.StatusRanked, payload.Status)
	assert.True(t, payload.Cascade.RecomputeLeaderboard)
	assert.True(t, payload.Cascade.RerankPopulation)
	assert.Len(t, payload.Cascade.PlaylistRefreshes, 3)

	require.NotNil(t, difficultyDB.Updated)
	assert.InDelta(t, 6.8, difficultyDB.Updated.Stars, 1e-12)
	assert.Equal(t, "acc", difficultyDB.Updated.Type)

	require.NotNil(t, reweightDB.Updated)
	assert.True(t, reweightDB.Updated.Finished)

	require.Len(t, reweightDB.RankChanges, 1)
	change := reweightDB.RankChanges[0]
	assert.Equal(t, sharedtypes.PlayerID("reviewer-1"), change.Author)
	assert.True(t, change.OldRankable)
	assert.True(t, change.NewRankable)
	assert.InDelta(t, 7.2, change.OldStars, 1e-12)
	assert.InDelta(t, 6.8, change.NewStars, 1e-12)
}

func TestApproveReweight_RevertUnranks(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return rankedDifficulty(), nil
	}
	reweightDB.GetUnfinishedFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Reweight, error) {
		return &qualificationdb.Reweight{
			ID:            sharedtypes.NewReviewID(),
			LeaderboardID: leaderboardID,
			Author:        "reviewer-1",
			Keep:          false,
			OpenedAt:      testNow.Add(-time.Hour),
		}, nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	approver := sharedtypes.Caller{ID: "reviewer-2", Roles: []sharedtypes.Role{sharedtypes.RoleRankedTeam}}
	result, err := s.ApproveReweight(context.Background(), approver, "lb-1")

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.ReweightApprovedPayload)
	require.True(t, ok)
	assert.False(t, payload.Kept)
	assert.Equal(t, sharedtypes.StatusUnranked, payload.Status)

	require.NotNil(t, difficultyDB.Updated)
	assert.Equal(t, sharedtypes.StatusUnranked, difficultyDB.Updated.Status)
	assert.InDelta(t, qualificationdomain.DefaultNoFail, difficultyDB.Updated.Modifiers.NF, 1e-12)
}

func TestApproveReweight_AuthorMayNotApprove(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return rankedDifficulty(), nil
	}
	reweightDB.GetUnfinishedFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Reweight, error) {
		return &qualificationdb.Reweight{
			ID:            sharedtypes.NewReviewID(),
			LeaderboardID: leaderboardID,
			Author:        "reviewer-1",
			Keep:          true,
			OpenedAt:      testNow.Add(-time.Hour),
		}, nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	result, err := s.ApproveReweight(context.Background(), reviewerCaller(), "lb-1")

	require.NoError(t, err)
	require.True(t, result.IsFailure())

	payload, ok := result.Failure.(*qualificationevents.ReweightApproveFailedPayload)
	require.True(t, ok)
	assert.Equal(t, string(qualificationdomain.ReweightRejectionOwnReweight), payload.Reason)
	assert.Empty(t, reweightDB.RankChanges)
}

func TestApproveReweight_NoneOpen(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		return rankedDifficulty(), nil
	}

	s := newTestService(difficultyDB, NewFakeQualificationRepository(), NewFakeReweightRepository())

	result, err := s.ApproveReweight(context.Background(), reviewerCaller(), "lb-1")

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrNotFound)
}

func TestSetRankedStatus_AdminRanksDirectly(t *testing.T) {
	difficultyDB := NewFakeDifficultyRepository()
	qualificationDB := NewFakeQualificationRepository()
	reweightDB := NewFakeReweightRepository()

	difficultyDB.GetFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.LeaderboardID) (*qualificationdb.Difficulty, error) {
		d := unrankedDifficulty()
		d.Status = sharedtypes.StatusQualified
		return d, nil
	}
	qualificationDB.GetOpenFunc = func(ctx context.Context, db bun.IDB, leaderboardID sharedtypes.LeaderboardID) (*qualificationdb.Qualification, error) {
		return openQualification(), nil
	}

	s := newTestService(difficultyDB, qualificationDB, reweightDB)

	admin := sharedtypes.Caller{ID: "admin-1", Roles: []sharedtypes.Role{sharedtypes.RoleAdmin}}
	result, err := s.SetRankedStatus(context.Background(), admin, RankSet{
		LeaderboardID: "lb-1",
		Rankable:      true,
		Stars:         7.5,
		Type:          "tech",
		Modifiers:     qualificationdomain.DefaultModifiers(),
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*qualificationevents.RankSetPayload)
	require.True(t, ok)
	assert.Equal(t, sharedtypes.StatusRanked, payload.Status)
	assert.True(t, payload.Cascade.RerankPopulation)

	require.NotNil(t, difficultyDB.Updated)
	assert.Equal(t, sharedtypes.StatusRanked, difficultyDB.Updated.Status)
	assert.Equal(t, testNow, difficultyDB.Updated.RankedAt)

	// The superseded qualification closes and the audit row is permanent.
	require.NotNil(t, qualificationDB.Updated)
	assert.False(t, qualificationDB.Updated.Open)
	require.Len(t, reweightDB.RankChanges, 1)
	assert.Equal(t, sharedtypes.PlayerID("admin-1"), reweightDB.RankChanges[0].Author)
	assert.False(t, reweightDB.RankChanges[0].OldRankable)
	assert.True(t, reweightDB.RankChanges[0].NewRankable)
}

func TestSetRankedStatus_NonAdminRejected(t *testing.T) {
	s := newTestService(NewFakeDifficultyRepository(), NewFakeQualificationRepository(), NewFakeReweightRepository())

	result, err := s.SetRankedStatus(context.Background(), reviewerCaller(), RankSet{LeaderboardID: "lb-1", Rankable: true})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrUnauthorized)
}
