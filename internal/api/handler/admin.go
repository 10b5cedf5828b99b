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

// AdminHandler handles participant administration endpoints
type AdminHandler struct {
	registry *registry.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(reg *registry.Service) *AdminHandler {
	return &AdminHandler{registry: reg}
}

// Delete handles DELETE /api/v1/admin/participants/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["id"])

	if err := h.registry.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// UpdateStatus handles PATCH /api/v1/admin/participants/{id}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := model.ParticipantID(mux.Vars(r)["id"])

	var req request.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.registry.UpdateStatus(r.Context(), id, status); err != nil {
		WriteError(w, err)
		return
	}

	participant, err := h.registry.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(*participant))
}

// ResetGame handles POST /api/v1/admin/participants/reset.
// Unlike a draw round reset, this only touches stored statuses; the draw
// engine keeps its own per-round tracking.
func (h *AdminHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	count, err := h.registry.ResetGame(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Reset{Reactivated: count})
}

// ClearAll handles DELETE /api/v1/admin/participants
func (h *AdminHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.ClearAll(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
