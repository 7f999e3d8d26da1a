// Package server exposes the decision pipeline over HTTP: bearer-token
// guarded endpoints for direct prediction/allocation/simulation calls, plus
// the four-step Workflow surface (predict, allocate, approve, metrics).
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/simulator"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/workflow"
	"github.com/rs/zerolog/log"
)

// Server is the HTTP front end over the Predictor/Allocator/Simulator/
// Workflow collaborators: one receiver struct holding the store and every
// domain service, a gorilla/mux router built once in NewServer, and
// handlers registered as (s *Server) xHandler methods.
type Server struct {
	cfg       config.App
	store     *store.Store
	predictor *predictor.Predictor
	allocator *allocator.Allocator
	simulator *simulator.Simulator
	workflow  *workflow.Workflow

	auth       *adminAuth
	httpServer *http.Server
}

// NewServer wires the Server to its collaborators and builds the router.
// The JWT signing key is generated fresh at process startup and never
// persisted, so restarting the process invalidates any outstanding login
// token. There is deliberately no durable multi-user account store.
func NewServer(
	appCfg config.App,
	authCfg config.Auth,
	st *store.Store,
	pred *predictor.Predictor,
	alloc *allocator.Allocator,
	sim *simulator.Simulator,
	wf *workflow.Workflow,
) (*Server, error) {
	signingKey, err := randomSigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT signing key: %w", err)
	}

	s := &Server{
		cfg:       appCfg,
		store:     st,
		predictor: pred,
		allocator: alloc,
		simulator: sim,
		workflow:  wf,
		auth:      newAdminAuth(authCfg.AdminToken, signingKey),
	}

	router := mux.NewRouter()
	s.registerRoutes(router)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", appCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func randomSigningKey() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ListenAndServe blocks serving HTTP until the context is cancelled, then
// gracefully shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("roomkeeper server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// registerRoutes registers every HTTP route the server exposes.
func (s *Server) registerRoutes(router *mux.Router) {
	router.HandleFunc("/login", s.loginHandler).Methods(http.MethodPost)

	guarded := router.NewRoute().Subrouter()
	guarded.Use(s.auth.middleware)

	guarded.HandleFunc("/predict_availability", s.predictAvailabilityHandler).Methods(http.MethodPost)
	guarded.HandleFunc("/optimize_allocation", s.optimizeAllocationHandler).Methods(http.MethodPost)
	guarded.HandleFunc("/simulate", s.simulateHandler).Methods(http.MethodPost)

	guarded.HandleFunc("/predict", s.workflowPredictHandler).Methods(http.MethodPost)
	guarded.HandleFunc("/allocate", s.workflowAllocateHandler).Methods(http.MethodPost)
	guarded.HandleFunc("/approve", s.workflowApproveHandler).Methods(http.MethodPost)
	guarded.HandleFunc("/metrics", s.metricsHandler).Methods(http.MethodGet)
	guarded.HandleFunc("/demo_context", s.demoContextHandler).Methods(http.MethodGet)
}
