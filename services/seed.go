package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/store"
)

// Seed inserts the sample records through the query service so they are
// validated like any other write. Records whose id is already present are
// skipped, which makes seeding repeatable. It returns the number inserted.
func Seed(ctx context.Context, q *QueryService, sample models.Sample) (int, error) {
	inserted := 0
	for _, rec := range sample.Records() {
		doc := store.Document(rec.Document)
		id, ok := doc.ID()
		if ok {
			exists, err := q.Exists(ctx, rec.Collection, id)
			if err != nil {
				return inserted, fmt.Errorf("seeding %s: %w", rec.Collection, err)
			}
			if exists {
				slog.Debug("seed record already present", "collection", rec.Collection, "id", id)
				continue
			}
		}
		if _, err := q.Insert(ctx, rec.Collection, doc); err != nil {
			return inserted, fmt.Errorf("seeding %s %d: %w", rec.Collection, id, err)
		}
		inserted++
	}
	slog.Info("seeded sample data", "inserted", inserted)
	return inserted, nil
}
