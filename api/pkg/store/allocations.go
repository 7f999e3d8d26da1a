package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"gorm.io/gorm"
)

// CountAllocationLogs returns the total number of allocation log rows.
func (s *Store) CountAllocationLogs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.gdb.WithContext(ctx).Model(&dbAllocationLog{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count allocation logs: %w", err)
	}
	return n, nil
}

// ListAllocationLogs returns every allocation log row, for tests/diagnostics.
func (s *Store) ListAllocationLogs(ctx context.Context) ([]types.AllocationLog, error) {
	var recs []dbAllocationLog
	if err := s.gdb.WithContext(ctx).Order("log_id asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list allocation logs: %w", err)
	}
	out := make([]types.AllocationLog, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toType())
	}
	return out, nil
}

// PersistAllocationOutputs commits the Allocator's side effects in a single
// transaction: demand forecast rows, then one AllocationLog per decision,
// then the corresponding requests' status transitions to ALLOCATED. This
// write order is fixed and the whole operation is all-or-nothing.
func (s *Store) PersistAllocationOutputs(
	ctx context.Context,
	forecastRows []types.DemandForecast,
	decisions []types.AllocationDecision,
	allocatedAt time.Time,
) error {
	return s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertDemandForecastTx(tx, forecastRows); err != nil {
			return fmt.Errorf("failed to persist demand forecast: %w", err)
		}

		if len(decisions) > 0 {
			logs := make([]dbAllocationLog, 0, len(decisions))
			requestIDs := make([]int64, 0, len(decisions))
			for _, d := range decisions {
				logs = append(logs, dbAllocationLog{
					RequestID:       d.RequestID,
					RoomID:          d.RoomID,
					AllocationScore: d.Score,
					AllocatedAt:     allocatedAt,
				})
				requestIDs = append(requestIDs, d.RequestID)
			}
			if err := tx.Create(&logs).Error; err != nil {
				return fmt.Errorf("failed to persist allocation logs: %w", err)
			}
			if err := markRequestsAllocatedTx(tx, requestIDs); err != nil {
				return fmt.Errorf("failed to mark requests allocated: %w", err)
			}
		}

		return nil
	})
}
