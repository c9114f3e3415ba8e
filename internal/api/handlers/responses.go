package handlers

// ErrorResponse is the uniform error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error" example:"camera not found"`
}

// SuccessResponse acknowledges requests that return no resource.
type SuccessResponse struct {
	Message string `json:"message" example:"recording deleted"`
}
