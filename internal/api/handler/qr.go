package handler

import (
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/teamdraw/teamdraw-go/internal/api/apierr"
	"github.com/teamdraw/teamdraw-go/internal/api/response"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// QRHandler serves a QR code pointing attendees at the registration page
type QRHandler struct {
	registrationURL string
}

// NewQRHandler creates a new QR handler for the given registration URL
func NewQRHandler(registrationURL string) *QRHandler {
	return &QRHandler{registrationURL: registrationURL}
}

// Get handles GET /api/v1/qr
func (h *QRHandler) Get(w http.ResponseWriter, r *http.Request) {
	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 64 || parsed > maxQRSize {
			WriteError(w, NewInvalidRequestError("size must be an integer between 64 and 1024"))
			return
		}
		size = parsed
	}

	png, err := qrcode.Encode(h.registrationURL, qrcode.Medium, size)
	if err != nil {
		WriteError(w, apierr.NewInternalError())
		return
	}

	response.PNG(w, png)
}
