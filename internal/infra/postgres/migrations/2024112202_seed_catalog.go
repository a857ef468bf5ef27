package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

// allCategoriesID is the fixed id of the seeded aggregate category.
const allCategoriesID = "all-categories"

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			defs := app.DefaultBadgeCatalog()
			_, err := db.NewInsert().
				Model(&defs).
				ModelTableExpr("badge_definitions").
				On("CONFLICT (code) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return err
			}

			all := domain.QuizCategory{
				ID:                  allCategoriesID,
				Name:                "Tüm Kategoriler",
				Slug:                "tum-kategoriler",
				IsActive:            true,
				IsAllCategories:     true,
				CompletionBadgeCode: app.AllCategoriesBadgeCode,
				SortOrder:           1000,
				CreatedAt:           time.Now(),
			}
			_, err = db.NewInsert().
				Model(&all).
				ModelTableExpr("quiz_categories").
				On("CONFLICT (id) DO NOTHING").
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDelete().
				TableExpr("quiz_categories").
				Where("id = ?", allCategoriesID).
				Exec(ctx)
			return err
		},
	)
}
