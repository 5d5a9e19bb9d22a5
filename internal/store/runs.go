package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/models"
)

// RecordRun appends an entry to the run log.
func RecordRun(ctx context.Context, s Store, kind, period string, res batch.Result, at time.Time) (*models.RunRecord, error) {
	record := &models.RunRecord{
		ID:      uuid.NewString(),
		Kind:    kind,
		Period:  period,
		Created: res.Created,
		Ignored: res.Ignored,
		Errored: res.Errored(),
		RanAt:   at,
	}
	if err := s.Insert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// History returns the run log, newest first.
func History(ctx context.Context, s Store) ([]models.RunRecord, error) {
	var records []models.RunRecord
	if err := s.Find(ctx, &records, ""); err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RanAt.After(records[j].RanAt)
	})
	return records, nil
}
