package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "roomkeeper", cfg.App.Name)
	require.Equal(t, 8080, cfg.App.Port)
	require.Equal(t, "roomkeeper.db", cfg.Store.DatabasePath)
	require.Equal(t, 0.5, cfg.Allocation.IdleProbabilityThreshold)
	require.Equal(t, 0.6, cfg.Allocation.StakeholderUsageCap)
	require.Equal(t, 4, cfg.Allocation.CPSATWorkers)
	require.Equal(t, 30, cfg.Prediction.MinTrainingRows)
	require.Equal(t, []string{"09-11", "11-13", "13-15", "15-17"}, cfg.Synthetic.TimeSlots)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ALLOCATION_CP_SAT_WORKERS", "0")
	t.Setenv("ADMIN_TOKEN", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.App.Port)
	require.Equal(t, 0, cfg.Allocation.CPSATWorkers)
	require.Equal(t, "s3cret", cfg.Auth.AdminToken)
}
