package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/teamdraw/teamdraw-go/internal/api/request"
	"github.com/teamdraw/teamdraw-go/internal/api/response"
	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/services/registry"
)

// ParticipantHandler handles participant registration and listing
type ParticipantHandler struct {
	registry *registry.Service
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(reg *registry.Service) *ParticipantHandler {
	return &ParticipantHandler{registry: reg}
}

// Register handles POST /api/v1/participants
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	participant, err := h.registry.Register(r.Context(), req.Username, req.Team)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ParticipantFromModel(*participant))
}

// List handles GET /api/v1/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.registry.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SnapshotFromModel(snapshot))
}

// Get handles GET /api/v1/participants/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["id"])

	participant, err := h.registry.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(*participant))
}

// Stats handles GET /api/v1/stats
func (h *ParticipantHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.registry.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromModel(snapshot.Stats()))
}
