package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Nikitosik2311/parserwb/internal/wildberries"
)

// QuotaHandler provides the search quota status endpoint.
type QuotaHandler struct {
	rl *wildberries.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler. A nil limiter reports zeroes.
func NewQuotaHandler(rl *wildberries.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64     `json:"daily_limit" example:"2000"                 doc:"Configured daily search limit, 0 when unlimited"`
		DailyUsed  int64     `json:"daily_used"  example:"142"                  doc:"Searches made in the current 24-hour window"`
		Remaining  int64     `json:"remaining"   example:"1858"                 doc:"Searches remaining in the current window"`
		ResetAt    time.Time `json:"reset_at"    example:"2025-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
	}
}

// GetQuota returns the current search quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	q := h.rl.Quota()
	resp.Body.DailyLimit = q.Limit
	resp.Body.DailyUsed = q.Used
	resp.Body.Remaining = q.Remaining
	resp.Body.ResetAt = q.ResetAt

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get search quota status",
		Description: "Returns the daily Wildberries search usage, remaining quota, and window reset time.",
		Tags:        []string{"wildberries"},
	}, h.GetQuota)
}
