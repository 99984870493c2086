package dto

// ErrorResponse formato de error uniforme de la API del terminal.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
