package request

// RegisterRequest is the body for POST /api/v1/participants
type RegisterRequest struct {
	Username string `json:"username"`
	Team     string `json:"team"`
}

// UpdateStatusRequest is the body for PATCH /api/v1/admin/participants/{id}/status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// DecideRequest is the body for POST /api/v1/admin/draw/decide
type DecideRequest struct {
	Decision string `json:"decision"`
}
