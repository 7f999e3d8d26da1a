package store

import (
	"context"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertDemandForecastTx replaces each slot's demand forecast row within an
// already-open transaction.
func upsertDemandForecastTx(tx *gorm.DB, rows []types.DemandForecast) error {
	if len(rows) == 0 {
		return nil
	}
	recs := make([]dbDemandForecast, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, dbDemandForecast{
			TimeSlot:             r.TimeSlot,
			HistoricalCount:      r.HistoricalCount,
			DemandIntensityScore: r.DemandIntensityScore,
		})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "time_slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"historical_count", "demand_intensity_score"}),
	}).Create(&recs).Error
}

// CountDemandForecastLogs returns the total number of demand forecast rows.
func (s *Store) CountDemandForecastLogs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.gdb.WithContext(ctx).Model(&dbDemandForecast{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count demand forecast logs: %w", err)
	}
	return n, nil
}

// ListDemandForecast returns every demand forecast row.
func (s *Store) ListDemandForecast(ctx context.Context) ([]types.DemandForecast, error) {
	var recs []dbDemandForecast
	if err := s.gdb.WithContext(ctx).Order("time_slot asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list demand forecast: %w", err)
	}
	out := make([]types.DemandForecast, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toType())
	}
	return out, nil
}
