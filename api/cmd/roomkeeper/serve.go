package roomkeeper

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/server"
	"github.com/roomkeeper/roomkeeper/api/pkg/simulator"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/system"
	"github.com/roomkeeper/roomkeeper/api/pkg/workflow"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the roomkeeper API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd)
		},
	}
}

func serve(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	system.SetupLogging(cfg.App.Name, cfg.App.LogLevel)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if err := st.SeedIfEmpty(ctx, cfg.Synthetic); err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	pred := predictor.New(st, cfg.Prediction)
	if err := pred.Train(ctx); err != nil {
		log.Warn().Err(err).Msg("startup training did not complete, predictions will fail until a successful retrain")
	}

	alloc := allocator.New(st, cfg.Allocation)
	sim := simulator.New(st, pred, cfg.Allocation, cfg.Prediction, cfg.Simulation)
	wf := workflow.New(st, pred, alloc, sim)

	srv, err := server.NewServer(cfg.App, cfg.Auth, st, pred, alloc, sim, wf)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	log.Info().Int("port", cfg.App.Port).Msg("roomkeeper starting")
	return srv.ListenAndServe(ctx)
}
