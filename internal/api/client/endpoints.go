package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/Nikitosik2311/parserwb/internal/wildberries"
	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// Watch is a configured query as reported by the API.
type Watch struct {
	Query     string `json:"query"`
	Threshold string `json:"threshold"`
}

// NotifiedList is the notified identifier set.
type NotifiedList struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// ListWatches returns the configured watches.
func (c *Client) ListWatches(ctx context.Context) ([]Watch, error) {
	var out struct {
		Watches []Watch `json:"watches"`
	}
	if err := c.get(ctx, "/api/v1/watches", &out); err != nil {
		return nil, err
	}
	return out.Watches, nil
}

// ListNotified returns the identifiers already alerted.
func (c *Client) ListNotified(ctx context.Context) (*NotifiedList, error) {
	var out NotifiedList
	if err := c.get(ctx, "/api/v1/notified", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQuota returns the daily search budget.
func (c *Client) GetQuota(ctx context.Context) (*wildberries.Quota, error) {
	var out wildberries.Quota
	if err := c.get(ctx, "/api/v1/quota", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerCheck asks the daemon to run a cycle now and waits for its report.
// It returns ErrCheckRunning when a cycle is already in progress.
func (c *Client) TriggerCheck(ctx context.Context) (*domain.CycleReport, error) {
	var out domain.CycleReport
	if err := c.post(ctx, "/api/v1/check", &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, ErrCheckRunning
		}
		return nil, err
	}
	return &out, nil
}
