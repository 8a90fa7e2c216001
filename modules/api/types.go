package api

// SuccessResponse is the envelope for every successful response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorResponse represents an error response. Error carries internal
// detail and is only set in development mode.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// WorkoutRequest represents a workout log request.
type WorkoutRequest struct {
	Minutes int `json:"minutes"`
}

func ok(message string, data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}
