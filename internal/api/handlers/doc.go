// Package handlers implements the HTTP handlers of the parserwb operational
// API. Probe endpoints are plain Echo handlers; the JSON API is registered
// with Huma.
package handlers

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
