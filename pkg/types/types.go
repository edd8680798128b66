// Package domain defines the core business types for the Wildberries price watcher.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuerySpec is a configured search phrase with its alert price threshold.
type QuerySpec struct {
	Text      string          `json:"query"     yaml:"query"`
	Threshold decimal.Decimal `json:"threshold" yaml:"threshold"`
}

// PricedItem is a product normalized out of an upstream search response.
// ID and URL are empty when the upstream record carried no identity.
type PricedItem struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	URL   string          `json:"url,omitempty"`
}

// Identity returns the first non-empty of ID, URL and Name.
func (p *PricedItem) Identity() string {
	switch {
	case p.ID != "":
		return p.ID
	case p.URL != "":
		return p.URL
	default:
		return p.Name
	}
}

// AtOrBelow reports whether the item price does not exceed threshold.
func (p *PricedItem) AtOrBelow(threshold decimal.Decimal) bool {
	return p.Price.LessThanOrEqual(threshold)
}

// CycleReport summarizes a single pass over the watch list. Failures counts
// failed searches, failed notifications and recovered panics.
type CycleReport struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Queries    int       `json:"queries"`
	Items      int       `json:"items"`
	Matched    int       `json:"matched"`
	Notified   int       `json:"notified"`
	Duplicates int       `json:"duplicates"`
	Failures   int       `json:"failures"`
}
