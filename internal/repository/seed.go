package repository

import (
	"alcyxob/fitlog-bot/internal/domain"
	"context"
	"fmt"
)

// SeedResult counts what a seed pass touched.
type SeedResult struct {
	Groups    int
	Exercises int
}

// SeedCatalog upserts every group and exercise of the catalog by slug.
// Running it again leaves existing entries untouched.
func SeedCatalog(ctx context.Context, store *Store, catalog []domain.CatalogGroup) (SeedResult, error) {
	var res SeedResult
	for gi, cg := range catalog {
		group := &domain.MuscleGroup{Slug: cg.Slug, Name: cg.Name, Position: gi}
		groupID, err := store.MuscleGroups.Upsert(ctx, group)
		if err != nil {
			return res, fmt.Errorf("seed group %s: %w", cg.Slug, err)
		}
		res.Groups++

		for ei, ce := range cg.Exercises {
			ex := &domain.Exercise{
				Slug:      ce.Slug,
				Name:      ce.Name,
				Kind:      ce.Kind,
				GroupID:   groupID,
				InputMode: ce.InputMode,
				Tip:       ce.Tip,
				Position:  ei,
			}
			if _, err := store.Exercises.Upsert(ctx, ex); err != nil {
				return res, fmt.Errorf("seed exercise %s: %w", ce.Slug, err)
			}
			res.Exercises++
		}
	}
	return res, nil
}
