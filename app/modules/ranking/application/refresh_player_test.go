package rankingservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingevents "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain/events"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

func TestRefreshPlayer_WritesWeightedTotals(t *testing.T) {
	playerDB := NewFakePlayerRepository()
	scoreDB := NewFakeScoreRepository()

	playerID := sharedtypes.PlayerID("76561198000000001")
	playerDB.GetPlayerFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*rankingdb.Player, error) {
		return &rankingdb.Player{ID: id, Country: "de", Rank: 10, CountryRank: 2}, nil
	}
	playerDB.CountRankedFunc = func(ctx context.Context, db bun.IDB) (int, error) { return 100, nil }
	playerDB.CountByCountryFunc = func(ctx context.Context, db bun.IDB, country sharedtypes.Country) (int, error) {
		return 20, nil
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scoreDB.ListEligibleByPlayerFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*rankingdb.Score, error) {
		return []*rankingdb.Score{
			{ID: 1, Pp: 100, Accuracy: 0.96, Timestamp: now},
			{ID: 2, Pp: 80, Accuracy: 0.94, Timestamp: now.Add(time.Hour)},
		}, nil
	}

	var gotTotals rankingdomain.PpTotals
	playerDB.UpdateTotalsFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, totals rankingdomain.PpTotals) error {
		gotTotals = totals
		return nil
	}
	var gotWeights map[int64]float64
	scoreDB.UpdateWeightsFunc = func(ctx context.Context, db bun.IDB, weights map[int64]float64) error {
		gotWeights = weights
		return nil
	}
	var gotSnapshot rankingdomain.StatsSnapshot
	playerDB.UpsertStatsFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, snapshot rankingdomain.StatsSnapshot) error {
		gotSnapshot = snapshot
		return nil
	}

	s := newTestService(playerDB, scoreDB, &FakeDifficultyLookup{}, Config{})

	result, err := s.RefreshPlayer(context.Background(), playerID)

	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Success.(*rankingevents.PlayerRefreshedPayload)
	require.True(t, ok)
	assert.Equal(t, playerID, payload.PlayerID)
	assert.InDelta(t, 100+80*0.965, payload.Pp, 1e-9)

	assert.InDelta(t, 100+80*0.965, gotTotals.Pp, 1e-9)
	require.Len(t, gotWeights, 2)
	assert.Equal(t, 1.0, gotWeights[1])
	assert.InDelta(t, 0.965, gotWeights[2], 1e-12)

	assert.Equal(t, 2, gotSnapshot.Ranked.PlayCount)
	assert.InDelta(t, 0.10, gotSnapshot.GlobalPercentile, 1e-9)
	assert.InDelta(t, 0.10, gotSnapshot.CountryPercentile, 1e-9)
}

func TestRefreshPlayer_NotFound(t *testing.T) {
	playerDB := NewFakePlayerRepository()
	scoreDB := NewFakeScoreRepository()

	s := newTestService(playerDB, scoreDB, &FakeDifficultyLookup{}, Config{})

	result, err := s.RefreshPlayer(context.Background(), "missing")

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.ErrorIs(t, result.Error, ErrPlayerNotFound)

	payload, ok := result.Failure.(*rankingevents.PlayerRefreshFailedPayload)
	require.True(t, ok)
	assert.Equal(t, "player not found", payload.Reason)

	assert.NotContains(t, playerDB.Trace(), "UpdateTotals")
}

func TestRefreshPlayer_StoreErrorPropagates(t *testing.T) {
	playerDB := NewFakePlayerRepository()
	scoreDB := NewFakeScoreRepository()

	playerDB.GetPlayerFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*rankingdb.Player, error) {
		return &rankingdb.Player{ID: id}, nil
	}
	boom := errors.New("connection reset")
	scoreDB.ListEligibleByPlayerFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*rankingdb.Score, error) {
		return nil, boom
	}

	s := newTestService(playerDB, scoreDB, &FakeDifficultyLookup{}, Config{})

	result, err := s.RefreshPlayer(context.Background(), "p1")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, result.IsFailure())
}

func TestRefreshPlayer_QualificationScoresExcludedFromTotals(t *testing.T) {
	playerDB := NewFakePlayerRepository()
	scoreDB := NewFakeScoreRepository()

	playerDB.GetPlayerFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*rankingdb.Player, error) {
		return &rankingdb.Player{ID: id}, nil
	}
	scoreDB.ListEligibleByPlayerFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) ([]*rankingdb.Score, error) {
		return []*rankingdb.Score{
			{ID: 1, Pp: 100},
			{ID: 2, Pp: 500, Qualification: true},
		}, nil
	}

	var gotTotals rankingdomain.PpTotals
	playerDB.UpdateTotalsFunc = func(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, totals rankingdomain.PpTotals) error {
		gotTotals = totals
		return nil
	}

	s := newTestService(playerDB, scoreDB, &FakeDifficultyLookup{}, Config{})

	_, err := s.RefreshPlayer(context.Background(), "p1")

	require.NoError(t, err)
	assert.InDelta(t, 100.0, gotTotals.Pp, 1e-9)
}
