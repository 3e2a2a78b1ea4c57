package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"GatePass/internal/campaign"
	"GatePass/internal/models"
	"GatePass/internal/store"
)

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.campaigns.ListCampaigns(r.Context())
	if err != nil {
		s.logger.Error("failed to list campaigns", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to fetch campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	s.respond(w, http.StatusOK, campaigns)
}

type createCampaignRequest struct {
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	BodyTemplate string `json:"bodyTemplate"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Subject == "" || req.BodyTemplate == "" {
		s.respondError(w, http.StatusBadRequest, "name, subject, and body template are required")
		return
	}

	c, err := s.campaigns.CreateCampaign(r.Context(), models.Campaign{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Subject:      req.Subject,
		BodyTemplate: req.BodyTemplate,
		Status:       models.CampaignDraft,
	})
	if err != nil {
		s.logger.Error("failed to create campaign", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create campaign")
		return
	}
	s.respond(w, http.StatusCreated, c)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")

	c, err := s.campaigns.GetCampaign(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to fetch campaign", zap.String("campaign_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to fetch campaign")
		return
	}
	s.respond(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")

	c, err := s.campaigns.GetCampaign(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to fetch campaign", zap.String("campaign_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	if c.Status == models.CampaignSending {
		s.respondError(w, http.StatusConflict, "campaign is currently sending")
		return
	}

	if err := s.campaigns.DeleteCampaign(r.Context(), id); err != nil {
		s.logger.Error("failed to delete campaign", zap.String("campaign_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sendCampaignRequest struct {
	OrganizerEmail string `json:"organizerEmail"`
}

func (s *Server) handleSendCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")

	var req sendCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrganizerEmail == "" {
		s.respondError(w, http.StatusBadRequest, "organizer email is required")
		return
	}

	result, err := s.launcher.Start(r.Context(), id, req.OrganizerEmail)
	switch {
	case errors.Is(err, campaign.ErrCampaignNotDraft):
		s.respondError(w, http.StatusConflict, "campaign is not in draft status")
		return
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "campaign not found")
		return
	case err != nil:
		s.logger.Error("failed to start campaign", zap.String("campaign_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to start campaign")
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"message":                  "email campaign started",
		"totalQueued":              result.TotalQueued,
		"estimatedDurationSeconds": int(result.EstimatedDuration.Seconds()),
	})
}

func (s *Server) handleCampaignProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")

	report, err := s.progress.Report(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to fetch campaign progress", zap.String("campaign_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to fetch campaign progress")
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"campaign": report.Campaign,
		"progress": map[string]int{
			"sent":       report.Sent,
			"failed":     report.Failed,
			"total":      report.Total,
			"percentage": report.Percentage,
			"remaining":  report.Remaining,
		},
	})
}
