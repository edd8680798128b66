package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// NotifiedLister exposes the notified identifier set.
type NotifiedLister interface {
	Notified(ctx context.Context) []string
}

// NotifiedHandler serves the set of already alerted identifiers.
type NotifiedHandler struct {
	notified NotifiedLister
}

// NewNotifiedHandler creates a new NotifiedHandler.
func NewNotifiedHandler(n NotifiedLister) *NotifiedHandler {
	return &NotifiedHandler{notified: n}
}

// ListNotifiedOutput is the response body for the notified endpoint.
type ListNotifiedOutput struct {
	Body struct {
		Count int      `json:"count" example:"2" doc:"Number of identifiers already alerted"`
		IDs   []string `json:"ids"   doc:"Identifiers in lexical order, formatted query__item__price"`
	}
}

// List returns the notified identifiers.
func (h *NotifiedHandler) List(ctx context.Context, _ *struct{}) (*ListNotifiedOutput, error) {
	ids := h.notified.Notified(ctx)
	if ids == nil {
		ids = []string{}
	}

	resp := &ListNotifiedOutput{}
	resp.Body.Count = len(ids)
	resp.Body.IDs = ids
	return resp, nil
}

// RegisterNotifiedRoutes registers the notified endpoint with the Huma API.
func RegisterNotifiedRoutes(api huma.API, h *NotifiedHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notified",
		Method:      http.MethodGet,
		Path:        "/api/v1/notified",
		Summary:     "List notified identifiers",
		Description: "Returns every identifier an alert has been delivered for. " +
			"An identifier is never alerted twice.",
		Tags: []string{"watches"},
	}, h.List)
}
