package handlers

// ErrorResponse is the error body returned by failed requests.
type ErrorResponse struct {
	Error string `json:"error" example:"pipeline worker unavailable"`
}

// SuccessResponse is the minimal acknowledgement body.
type SuccessResponse struct {
	OK bool `json:"ok" example:"true"`
}
