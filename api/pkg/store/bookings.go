package store

import (
	"context"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// CreateBookingRecords batch-inserts historical booking rows, used by the
// seeder.
func (s *Store) CreateBookingRecords(ctx context.Context, records []types.BookingRecord) error {
	if len(records) == 0 {
		return nil
	}
	recs := make([]dbBookingRecord, 0, len(records))
	for _, r := range records {
		recs = append(recs, dbBookingRecord{RoomID: r.RoomID, Date: r.Date, Slot: r.Slot, Occupied: r.Occupied, RoomType: r.RoomType})
	}
	if err := s.gdb.WithContext(ctx).CreateInBatches(recs, 200).Error; err != nil {
		return fmt.Errorf("failed to create booking records: %w", err)
	}
	return nil
}

// CountBookingRecords returns the total number of historical rows.
func (s *Store) CountBookingRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := s.gdb.WithContext(ctx).Model(&dbBookingRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count booking records: %w", err)
	}
	return n, nil
}

// ListBookingHistory loads the entire booking history joined with room_type,
// sorted by (room_id, slot, date ascending) as required by the Predictor's
// causal feature computation.
func (s *Store) ListBookingHistory(ctx context.Context) ([]types.BookingRecord, error) {
	var recs []dbBookingRecord
	err := s.gdb.WithContext(ctx).
		Order("room_id asc, time_slot asc, date asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booking history: %w", err)
	}
	out := make([]types.BookingRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toType())
	}
	return out, nil
}

// HistoricalOccupancyFrequency returns the mean `occupied` value over all
// history for (room_id, slot). The bool is false when no rows exist.
func (s *Store) HistoricalOccupancyFrequency(ctx context.Context, roomID int64, slot string) (float64, bool, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := s.gdb.WithContext(ctx).Model(&dbBookingRecord{}).
		Select("AVG(occupied) as avg, COUNT(*) as count").
		Where("room_id = ? AND time_slot = ?", roomID, slot).
		Scan(&row).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to compute historical occupancy frequency: %w", err)
	}
	if row.Count == 0 || row.Avg == nil {
		return 0, false, nil
	}
	return *row.Avg, true, nil
}

// RollingWindowOccupancyAverage returns the mean `occupied` value over the
// trailing windowDays calendar days ending strictly before date, for
// (room_id, slot). The bool is false when no rows exist in that window.
func (s *Store) RollingWindowOccupancyAverage(ctx context.Context, roomID int64, slot, beforeDate string, windowDays int) (float64, bool, error) {
	startDate, err := dateMinusDays(beforeDate, windowDays)
	if err != nil {
		return 0, false, err
	}

	var row struct {
		Avg   *float64
		Count int64
	}
	err = s.gdb.WithContext(ctx).Model(&dbBookingRecord{}).
		Select("AVG(occupied) as avg, COUNT(*) as count").
		Where("room_id = ? AND time_slot = ? AND date >= ? AND date < ?", roomID, slot, startDate, beforeDate).
		Scan(&row).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to compute rolling window average: %w", err)
	}
	if row.Count == 0 || row.Avg == nil {
		return 0, false, nil
	}
	return *row.Avg, true, nil
}

// GlobalOccupancyMean returns the mean `occupied` value across all history,
// used as the last-resort fallback before a configured default.
func (s *Store) GlobalOccupancyMean(ctx context.Context) (float64, bool, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := s.gdb.WithContext(ctx).Model(&dbBookingRecord{}).
		Select("AVG(occupied) as avg, COUNT(*) as count").
		Scan(&row).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to compute global occupancy mean: %w", err)
	}
	if row.Count == 0 || row.Avg == nil {
		return 0, false, nil
	}
	return *row.Avg, true, nil
}
