// Package api is the HTTP surface for operators: campaign CRUD and send
// control, participant CRUD and bulk import, and progress polling. Handlers
// are methods on *Server; each handler file covers one resource group.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"GatePass/internal/campaign"
	"GatePass/internal/progress"
	"GatePass/internal/store"
)

type Server struct {
	campaigns    store.CampaignStore
	participants store.ParticipantStore
	launcher     *campaign.Launcher
	progress     *progress.Aggregator
	logger       *zap.Logger
}

func NewServer(
	campaigns store.CampaignStore,
	participants store.ParticipantStore,
	launcher *campaign.Launcher,
	aggregator *progress.Aggregator,
	logger *zap.Logger,
) *Server {
	return &Server{
		campaigns:    campaigns,
		participants: participants,
		launcher:     launcher,
		progress:     aggregator,
		logger:       logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.handleListCampaigns)
			r.Post("/", s.handleCreateCampaign)
			r.Route("/{campaignID}", func(r chi.Router) {
				r.Get("/", s.handleGetCampaign)
				r.Delete("/", s.handleDeleteCampaign)
				r.Post("/send", s.handleSendCampaign)
				r.Get("/progress", s.handleCampaignProgress)
			})
		})

		r.Route("/participants", func(r chi.Router) {
			r.Get("/", s.handleListParticipants)
			r.Post("/", s.handleCreateParticipant)
			r.Post("/bulk", s.handleBulkCreateParticipants)
			r.Post("/import", s.handleImportParticipantsCSV)
			r.Route("/{participantID}", func(r chi.Router) {
				r.Put("/", s.handleUpdateParticipant)
				r.Delete("/", s.handleDeleteParticipant)
			})
		})
	})

	return r
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}
