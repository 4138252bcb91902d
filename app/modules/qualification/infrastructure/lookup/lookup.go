// Package qualificationlookup exposes the qualification module's difficulty
// state to the ranking module through its lookup port.
package qualificationlookup

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
	rankingservice "github.com/Cadence-Arcade/rankcore/app/modules/ranking/application"
	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// DifficultyLookup adapts the qualification difficulty store to the ranking
// module's read port.
type DifficultyLookup struct {
	db           *bun.DB
	difficulties qualificationdb.DifficultyRepository
}

func NewDifficultyLookup(db *bun.DB, difficulties qualificationdb.DifficultyRepository) *DifficultyLookup {
	return &DifficultyLookup{db: db, difficulties: difficulties}
}

func (l *DifficultyLookup) GetDifficulty(ctx context.Context, leaderboardID sharedtypes.LeaderboardID) (rankingservice.DifficultyInfo, error) {
	difficulty, err := l.difficulties.Get(ctx, l.db, leaderboardID)
	if err != nil {
		if errors.Is(err, qualificationdb.ErrNotFound) {
			return rankingservice.DifficultyInfo{}, rankingdb.ErrNotFound
		}
		return rankingservice.DifficultyInfo{}, err
	}
	return rankingservice.DifficultyInfo{
		Rating: rankingdomain.DifficultyRating{
			Stars:      difficulty.Stars,
			AccRating:  difficulty.AccRating,
			PassRating: difficulty.PassRating,
			TechRating: difficulty.TechRating,
		},
		Status: difficulty.Status,
	}, nil
}

var _ rankingservice.DifficultyLookup = (*DifficultyLookup)(nil)
