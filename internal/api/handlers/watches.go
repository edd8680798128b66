package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// WatchLister exposes the configured watch list.
type WatchLister interface {
	Queries() []domain.QuerySpec
}

// WatchHandler serves the configured watch list.
type WatchHandler struct {
	watches WatchLister
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(w WatchLister) *WatchHandler {
	return &WatchHandler{watches: w}
}

// Watch is one configured query. The threshold is a decimal string so it
// survives JSON clients that parse numbers as floats.
type Watch struct {
	Query     string `json:"query"     example:"Iphone 16" doc:"Search text sent to Wildberries"`
	Threshold string `json:"threshold" example:"50000"     doc:"Alert when price is at or below this value, in rubles"`
}

// ListWatchesOutput is the response body for the watch list endpoint.
type ListWatchesOutput struct {
	Body struct {
		Watches []Watch `json:"watches" doc:"Configured watches in evaluation order"`
	}
}

// List returns the configured watches.
func (h *WatchHandler) List(_ context.Context, _ *struct{}) (*ListWatchesOutput, error) {
	queries := h.watches.Queries()

	resp := &ListWatchesOutput{}
	resp.Body.Watches = make([]Watch, 0, len(queries))
	for _, q := range queries {
		resp.Body.Watches = append(resp.Body.Watches, Watch{
			Query:     q.Text,
			Threshold: q.Threshold.String(),
		})
	}
	return resp, nil
}

// RegisterWatchRoutes registers the watch list endpoint with the Huma API.
func RegisterWatchRoutes(api huma.API, h *WatchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-watches",
		Method:      http.MethodGet,
		Path:        "/api/v1/watches",
		Summary:     "List watches",
		Description: "Returns the queries and price thresholds the watcher evaluates every cycle.",
		Tags:        []string{"watches"},
	}, h.List)
}
