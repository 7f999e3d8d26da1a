package roomkeeper

import (
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/system"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRetrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the idle-probability model from current booking history and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return retrain(cmd)
		},
	}
}

func retrain(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	system.SetupLogging(cfg.App.Name, cfg.App.LogLevel)

	ctx := cmd.Context()

	st, err := store.New(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	pred := predictor.New(st, cfg.Prediction)
	if err := pred.Train(ctx); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	meta, ok, err := st.GetModelMetadata(ctx)
	if err != nil {
		return fmt.Errorf("training succeeded but metadata could not be read back: %w", err)
	}
	if !ok {
		return fmt.Errorf("training succeeded but no model metadata was found")
	}

	log.Info().
		Str("model_type", meta.ModelType).
		Str("model_version", meta.ModelVersion).
		Int("training_rows", meta.TrainingRows).
		Time("trained_at", meta.TrainedAt).
		Msg("retrain complete")

	return nil
}
