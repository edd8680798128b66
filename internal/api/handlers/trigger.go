package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// CycleRunner runs a watch cycle unless one is already in progress.
type CycleRunner interface {
	TryRunCycle(ctx context.Context) (domain.CycleReport, bool)
}

// CheckHandler handles manual cycle trigger requests.
type CheckHandler struct {
	runner CycleRunner
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(r CycleRunner) *CheckHandler {
	return &CheckHandler{runner: r}
}

// CheckOutput is the response body for the check endpoint.
type CheckOutput struct {
	Body domain.CycleReport
}

// Check runs one cycle over the watch list and returns its report.
func (h *CheckHandler) Check(ctx context.Context, _ *struct{}) (*CheckOutput, error) {
	report, ok := h.runner.TryRunCycle(ctx)
	if !ok {
		return nil, huma.Error409Conflict("a check cycle is already running")
	}
	return &CheckOutput{Body: report}, nil
}

// RegisterCheckRoutes registers the trigger endpoint with the Huma API.
func RegisterCheckRoutes(api huma.API, h *CheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "run-check",
		Method:      http.MethodPost,
		Path:        "/api/v1/check",
		Summary:     "Run a check cycle now",
		Description: "Searches every watch, alerts on new items at or below their threshold, " +
			"and returns the cycle report. Returns 409 while another cycle is running.",
		Tags:   []string{"watches"},
		Errors: []int{http.StatusConflict},
	}, h.Check)
}
