// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/Nikitosik2311/parserwb/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings do
// not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Metrics parses expr and returns the metric names it selects, sorted and
// deduplicated.
func Metrics(expr string) ([]string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, err)
	}

	seen := map[string]bool{}
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			seen[vs.Name] = true
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Expr validates one expression under context, a human-readable location.
func Expr(context, expr string, known map[string]bool) Result {
	var r Result
	if expr == "" {
		r.Errors = append(r.Errors, context+": empty expression")
		return r
	}

	names, err := Metrics(expr)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", context, err))
		return r
	}
	if len(names) == 0 {
		r.Warnings = append(r.Warnings, context+": expression selects no metrics")
	}
	for _, n := range names {
		if !known[n] {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: unknown metric %q", context, n))
		}
	}
	return r
}

// panelJSON is the subset of a Grafana panel the validator inspects.
type panelJSON struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
	Panels []panelJSON `json:"panels"`
}

// Dashboard validates every panel query of dash. Panels are read from the
// dashboard's JSON form, so rows nested or flattened are handled alike.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var r Result

	data, err := json.Marshal(dash)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return r
	}
	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("reading dashboard JSON: %v", err))
		return r
	}

	var walk func([]panelJSON)
	walk = func(ps []panelJSON) {
		for _, p := range ps {
			if p.Type != "row" && len(p.Targets) == 0 {
				r.Warnings = append(r.Warnings, fmt.Sprintf("panel %q has no targets", p.Title))
			}
			for i, t := range p.Targets {
				r.merge(Expr(fmt.Sprintf("panel %q target %d", p.Title, i), t.Expr, known))
			}
			walk(p.Panels)
		}
	}
	walk(doc.Panels)

	return r
}

// CountPanels returns the number of non-row panels in dash.
func CountPanels(dash dashboard.Dashboard) (int, error) {
	data, err := json.Marshal(dash)
	if err != nil {
		return 0, err
	}
	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, err
	}

	var count func([]panelJSON) int
	count = func(ps []panelJSON) int {
		n := 0
		for _, p := range ps {
			if p.Type != "row" {
				n++
			}
			n += count(p.Panels)
		}
		return n
	}
	return count(doc.Panels), nil
}

// Rules validates every rule expression of cr. Recording rules must also
// be named in known, so dashboards can rely on them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var r Result
	for _, rule := range cr.All() {
		name := rule.Alert
		if rule.Record != "" {
			name = rule.Record
			if !known[rule.Record] {
				r.Errors = append(r.Errors, fmt.Sprintf("recording rule %q is not a known metric", rule.Record))
			}
		}
		r.merge(Expr(fmt.Sprintf("%s rule %q", cr.Metadata.Name, name), rule.Expr, known))
	}
	return r
}
