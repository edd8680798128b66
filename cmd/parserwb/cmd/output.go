package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apiclient "github.com/Nikitosik2311/parserwb/internal/api/client"
	"github.com/Nikitosik2311/parserwb/internal/wildberries"
	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printItemsTable lists search results. When threshold is non-zero a
// MATCH column marks items at or below it.
func printItemsTable(w io.Writer, items []domain.PricedItem, threshold decimal.Decimal) error {
	tw := newTabWriter(w)
	withMatch := !threshold.IsZero()

	if withMatch {
		tw.writef("ID\tNAME\tPRICE\tMATCH\tURL\n")
	} else {
		tw.writef("ID\tNAME\tPRICE\tURL\n")
	}
	for i := range items {
		it := &items[i]
		price := it.Price.StringFixed(2)
		if withMatch {
			match := ""
			if it.AtOrBelow(threshold) {
				match = "yes"
			}
			tw.writef("%s\t%s\t%s\t%s\t%s\n", it.ID, truncate(it.Name, 40), price, match, it.URL)
			continue
		}
		tw.writef("%s\t%s\t%s\t%s\n", it.ID, truncate(it.Name, 40), price, it.URL)
	}
	return tw.finish()
}

func printReport(w io.Writer, r *domain.CycleReport) error {
	tw := newTabWriter(w)
	tw.writef("Cycle:\t%s\n", r.CycleID)
	tw.writef("Duration:\t%s\n", r.FinishedAt.Sub(r.StartedAt).Round(10 * time.Millisecond))
	tw.writef("Queries:\t%d\n", r.Queries)
	tw.writef("Items:\t%d\n", r.Items)
	tw.writef("Matched:\t%d\n", r.Matched)
	tw.writef("Notified:\t%d\n", r.Notified)
	tw.writef("Duplicates:\t%d\n", r.Duplicates)
	tw.writef("Failures:\t%d\n", r.Failures)
	return tw.finish()
}

func printWatchesTable(w io.Writer, watches []apiclient.Watch) error {
	tw := newTabWriter(w)
	tw.writef("QUERY\tTHRESHOLD\n")
	for _, wt := range watches {
		tw.writef("%s\t%s\n", wt.Query, wt.Threshold)
	}
	return tw.finish()
}

func printQuota(w io.Writer, q *wildberries.Quota) error {
	tw := newTabWriter(w)
	if q.Limit == 0 {
		tw.writef("Daily limit:\tunlimited\n")
	} else {
		tw.writef("Daily limit:\t%d\n", q.Limit)
		tw.writef("Remaining:\t%d\n", q.Remaining)
	}
	tw.writef("Used:\t%d\n", q.Used)
	tw.writef("Resets at:\t%s\n", q.ResetAt.Local().Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to maxLen runes. Item names are mostly Cyrillic, so
// byte slicing would split characters.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
