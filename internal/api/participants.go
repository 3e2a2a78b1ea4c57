package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"GatePass/internal/models"
	"GatePass/internal/store"
)

const maxImportRows = 5000

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.participants.ListParticipants(r.Context())
	if err != nil {
		s.logger.Error("failed to list participants", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to fetch participants")
		return
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	s.respond(w, http.StatusOK, participants)
}

type participantRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

func (req participantRequest) toModel(id string) models.Participant {
	category := req.Category
	if category == "" {
		category = "General"
	}
	return models.Participant{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Category: category,
	}
}

func (s *Server) handleCreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		s.respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	p, err := s.participants.CreateParticipant(r.Context(), req.toModel(uuid.NewString()))
	if err != nil {
		s.logger.Error("failed to create participant", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create participant")
		return
	}
	s.respond(w, http.StatusCreated, p)
}

type bulkParticipantsRequest struct {
	Participants []participantRequest `json:"participants"`
}

func (s *Server) handleBulkCreateParticipants(w http.ResponseWriter, r *http.Request) {
	var req bulkParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Participants) == 0 {
		s.respondError(w, http.StatusBadRequest, "participants must be a non-empty array")
		return
	}

	created := make([]models.Participant, 0, len(req.Participants))
	for _, pr := range req.Participants {
		if pr.Name == "" || pr.Email == "" {
			continue
		}
		p, err := s.participants.CreateParticipant(r.Context(), pr.toModel(uuid.NewString()))
		if err != nil {
			s.logger.Error("failed to create participant", zap.String("email", pr.Email), zap.Error(err))
			continue
		}
		created = append(created, p)
	}

	s.respond(w, http.StatusCreated, map[string]any{
		"count":        len(created),
		"participants": created,
	})
}

func (s *Server) handleImportParticipantsCSV(w http.ResponseWriter, r *http.Request) {
	parsed, err := store.ParseParticipantsCSV(r.Body, maxImportRows)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created := make([]models.Participant, 0, len(parsed))
	for _, p := range parsed {
		saved, err := s.participants.CreateParticipant(r.Context(), p)
		if err != nil {
			s.logger.Error("failed to import participant", zap.String("email", p.Email), zap.Error(err))
			continue
		}
		created = append(created, saved)
	}

	s.respond(w, http.StatusCreated, map[string]any{
		"count":        len(created),
		"participants": created,
	})
}

func (s *Server) handleUpdateParticipant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "participantID")

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		s.respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	p, err := s.participants.UpdateParticipant(r.Context(), req.toModel(id))
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "participant not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update participant", zap.String("participant_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to update participant")
		return
	}
	s.respond(w, http.StatusOK, p)
}

func (s *Server) handleDeleteParticipant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "participantID")

	err := s.participants.DeleteParticipant(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "participant not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete participant", zap.String("participant_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to delete participant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
