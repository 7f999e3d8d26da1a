package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const modelMetadataSingletonID = 1

// SaveModelMetadata overwrites the singleton model-metadata row with the
// result of the latest training run.
func (s *Store) SaveModelMetadata(ctx context.Context, meta types.ModelMetadata) error {
	rec := dbModelMetadata{
		ID:           modelMetadataSingletonID,
		ModelType:    meta.ModelType,
		ModelVersion: meta.ModelVersion,
		TrainedAt:    meta.TrainedAt,
		TrainingRows: meta.TrainingRows,
	}
	err := s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"model_type", "model_version", "trained_at", "training_rows"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save model metadata: %w", err)
	}
	return nil
}

// GetModelMetadata returns the metadata of the most recently trained model,
// if training has ever run.
func (s *Store) GetModelMetadata(ctx context.Context) (types.ModelMetadata, bool, error) {
	var rec dbModelMetadata
	err := s.gdb.WithContext(ctx).First(&rec, "id = ?", modelMetadataSingletonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ModelMetadata{}, false, nil
		}
		return types.ModelMetadata{}, false, fmt.Errorf("failed to get model metadata: %w", err)
	}
	return rec.toType(), true, nil
}
