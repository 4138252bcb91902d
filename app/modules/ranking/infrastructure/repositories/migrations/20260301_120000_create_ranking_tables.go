package rankingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	rankingdb "github.com/Cadence-Arcade/rankcore/app/modules/ranking/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating players, player_score_stats, and scores tables...")

		if _, err := db.NewCreateTable().Model((*rankingdb.Player)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*rankingdb.ScoreStats)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*rankingdb.Score)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// The rank pass reads the whole population sorted by pp; score
		// aggregation reads per-player and per-leaderboard slices.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_players_pp ON players (pp DESC)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_players_country ON players (country)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_scores_player_id ON scores (player_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_scores_leaderboard_id ON scores (leaderboard_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_scores_player_leaderboard ON scores (player_id, leaderboard_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Ranking tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ranking tables...")

		if _, err := db.NewDropTable().Model((*rankingdb.Score)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*rankingdb.ScoreStats)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*rankingdb.Player)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Ranking tables dropped successfully!")
		return nil
	})
}
