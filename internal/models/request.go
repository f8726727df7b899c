package models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PatchModelRequest is the narrow visibility-only update used from the
// admin list view.
type PatchModelRequest struct {
	Visible *bool `json:"visible"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
