package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"gorm.io/gorm"
)

// CreatePrediction appends a new prediction row. Predictions is an
// append-only audit stream; "latest wins" is enforced at read time.
func (s *Store) CreatePrediction(ctx context.Context, pred types.IdlePrediction) (types.IdlePrediction, error) {
	rec := dbIdlePrediction{
		RoomID:          pred.RoomID,
		Date:            pred.Date,
		Slot:            pred.Slot,
		IdleProbability: pred.IdleProbability,
		CreatedAt:       pred.CreatedAt,
	}
	if err := s.gdb.WithContext(ctx).Create(&rec).Error; err != nil {
		return types.IdlePrediction{}, fmt.Errorf("failed to create prediction: %w", err)
	}
	return rec.toType(), nil
}

// GetLatestPrediction returns the most recently created prediction for
// (room_id, date, slot), if any.
func (s *Store) GetLatestPrediction(ctx context.Context, roomID int64, date, slot string) (types.IdlePrediction, bool, error) {
	var rec dbIdlePrediction
	err := s.gdb.WithContext(ctx).
		Where("room_id = ? AND date = ? AND time_slot = ?", roomID, date, slot).
		Order("prediction_id desc").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.IdlePrediction{}, false, nil
		}
		return types.IdlePrediction{}, false, fmt.Errorf("failed to get latest prediction: %w", err)
	}
	return rec.toType(), true, nil
}

// GetLatestPredictionsForSlot returns the latest prediction per room for
// (date, slot), keyed by room_id.
func (s *Store) GetLatestPredictionsForSlot(ctx context.Context, date, slot string) (map[int64]types.IdlePrediction, error) {
	var recs []dbIdlePrediction
	err := s.gdb.WithContext(ctx).
		Where("date = ? AND time_slot = ?", date, slot).
		Order("prediction_id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for slot: %w", err)
	}
	out := make(map[int64]types.IdlePrediction, len(recs))
	for _, r := range recs {
		// later rows (larger prediction_id) overwrite earlier ones for the
		// same room, so the map ends up holding "latest wins" per room.
		out[r.RoomID] = r.toType()
	}
	return out, nil
}

// CountPredictions returns the total number of prediction rows ever written.
func (s *Store) CountPredictions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.gdb.WithContext(ctx).Model(&dbIdlePrediction{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}
