package qualificationmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	qualificationdb "github.com/Cadence-Arcade/rankcore/app/modules/qualification/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating qualification tables...")

		if _, err := db.NewCreateTable().Model((*qualificationdb.Difficulty)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*qualificationdb.Qualification)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*qualificationdb.Reweight)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*qualificationdb.RankChange)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// One open review per leaderboard, enforced by the store.
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_qualifications_open ON rank_qualifications (leaderboard_id) WHERE open").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_reweights_unfinished ON rank_updates (leaderboard_id) WHERE NOT finished").Exec(ctx); err != nil {
			return err
		}
		// Cooldown lookups join nominations against content hashes.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_difficulties_content_hash ON leaderboard_difficulties (content_hash)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_difficulties_song_id ON leaderboard_difficulties (song_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_qualifications_nominator ON rank_qualifications (nominator)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rank_changes_leaderboard ON rank_changes (leaderboard_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Qualification tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping qualification tables...")

		if _, err := db.NewDropTable().Model((*qualificationdb.RankChange)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*qualificationdb.Reweight)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*qualificationdb.Qualification)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*qualificationdb.Difficulty)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Qualification tables dropped successfully!")
		return nil
	})
}
