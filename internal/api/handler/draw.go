package handler

import (
	"encoding/json"
	"net/http"

	"github.com/teamdraw/teamdraw-go/internal/api/request"
	"github.com/teamdraw/teamdraw-go/internal/api/response"
	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/services/draw"
)

// DrawHandler handles draw engine endpoints
type DrawHandler struct {
	engine *draw.Engine
}

// NewDrawHandler creates a new draw handler
func NewDrawHandler(engine *draw.Engine) *DrawHandler {
	return &DrawHandler{engine: engine}
}

// Status handles GET /api/v1/draw
func (h *DrawHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.DrawStatusFromModel(h.engine.Status()))
}

// Spin handles POST /api/v1/admin/draw/spin
func (h *DrawHandler) Spin(w http.ResponseWriter, r *http.Request) {
	selection, err := h.engine.Spin(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SpinFromSelection(selection))
}

// Decide handles POST /api/v1/admin/draw/decide
func (h *DrawHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req request.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	decided, err := h.engine.Decide(r.Context(), model.Status(req.Decision))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(*decided))
}

// ResetRound handles POST /api/v1/admin/draw/reset
func (h *DrawHandler) ResetRound(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.ResetRound(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Reset{Reactivated: count})
}
