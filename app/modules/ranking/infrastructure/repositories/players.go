package rankingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	rankingdomain "github.com/Cadence-Arcade/rankcore/app/modules/ranking/domain"
	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// PlayerDBImpl implements PlayerRepository on bun.
type PlayerDBImpl struct{}

var _ PlayerRepository = (*PlayerDBImpl)(nil)

func NewPlayerRepository() *PlayerDBImpl {
	return &PlayerDBImpl{}
}

func (r *PlayerDBImpl) GetPlayer(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID) (*Player, error) {
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Relation("Stats").
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (r *PlayerDBImpl) ListEligibleIDs(ctx context.Context, db bun.IDB) ([]sharedtypes.PlayerID, error) {
	var ids []sharedtypes.PlayerID
	err := db.NewSelect().
		Model((*Player)(nil)).
		Column("id").
		Where("banned = ? OR bot = ?", false, true).
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible player ids: %w", err)
	}
	return ids, nil
}

func (r *PlayerDBImpl) ListRankable(ctx context.Context, db bun.IDB) ([]*rankingdomain.RankedPlayer, error) {
	var rows []*Player
	err := db.NewSelect().
		Model(&rows).
		Column("id", "country", "pp", "banned").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankable players: %w", err)
	}

	players := make([]*rankingdomain.RankedPlayer, len(rows))
	for i, row := range rows {
		players[i] = &rankingdomain.RankedPlayer{
			ID:      row.ID,
			Country: row.Country,
			Pp:      row.Pp,
			Banned:  row.Banned,
		}
	}
	return players, nil
}

func (r *PlayerDBImpl) UpdateTotals(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, totals rankingdomain.PpTotals) error {
	res, err := db.NewUpdate().
		Model((*Player)(nil)).
		Set("pp = ?", totals.Pp).
		Set("acc_pp = ?", totals.AccPp).
		Set("pass_pp = ?", totals.PassPp).
		Set("tech_pp = ?", totals.TechPp).
		Set("bonus_pp = ?", totals.BonusPp).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update player totals: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// rankRow is the VALUES shape for the bulk rank upsert.
type rankRow struct {
	ID          sharedtypes.PlayerID `bun:"id"`
	Rank        int                  `bun:"rank"`
	CountryRank int                  `bun:"country_rank"`
}

func (r *PlayerDBImpl) BulkUpdateRanks(ctx context.Context, db bun.IDB, players []*rankingdomain.RankedPlayer) error {
	if len(players) == 0 {
		return nil
	}

	rows := make([]rankRow, len(players))
	for i, p := range players {
		rows[i] = rankRow{ID: p.ID, Rank: p.Rank, CountryRank: p.CountryRank}
	}

	values := db.NewValues(&rows)
	_, err := db.NewUpdate().
		With("_data", values).
		Model((*Player)(nil)).
		TableExpr("_data").
		Set("rank = _data.rank").
		Set("country_rank = _data.country_rank").
		Where("p.id = _data.id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to bulk update ranks: %w", err)
	}
	return nil
}

func (r *PlayerDBImpl) UpsertStats(ctx context.Context, db bun.IDB, id sharedtypes.PlayerID, snapshot rankingdomain.StatsSnapshot) error {
	stats := &ScoreStats{
		PlayerID: id,
		Snapshot: snapshot,
	}
	_, err := db.NewInsert().
		Model(stats).
		On("CONFLICT (player_id) DO UPDATE").
		Set("snapshot = EXCLUDED.snapshot").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert score stats: %w", err)
	}
	return nil
}

func (r *PlayerDBImpl) CountByCountry(ctx context.Context, db bun.IDB, country sharedtypes.Country) (int, error) {
	count, err := db.NewSelect().
		Model((*Player)(nil)).
		Where("country = ?", country).
		Where("banned = ?", false).
		Where("pp > 0").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players for country %s: %w", country, err)
	}
	return count, nil
}

func (r *PlayerDBImpl) CountRanked(ctx context.Context, db bun.IDB) (int, error) {
	count, err := db.NewSelect().
		Model((*Player)(nil)).
		Where("banned = ?", false).
		Where("pp > 0").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count ranked players: %w", err)
	}
	return count, nil
}

func (r *PlayerDBImpl) TopPlayers(ctx context.Context, db bun.IDB, n int) ([]*Player, error) {
	var players []*Player
	err := db.NewSelect().
		Model(&players).
		Where("rank > 0").
		Order("rank ASC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list top players: %w", err)
	}
	return players, nil
}
