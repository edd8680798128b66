// Package watcher runs the search, filter, notify and persist cycle over the
// configured watch list.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nikitosik2311/parserwb/internal/metrics"
	"github.com/Nikitosik2311/parserwb/internal/notify"
	"github.com/Nikitosik2311/parserwb/internal/state"
	"github.com/Nikitosik2311/parserwb/internal/wildberries"
	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

const (
	// DefaultInterval is the pause between cycles.
	DefaultInterval = 300 * time.Second
	// DefaultQueryPause is the pause after each query within a cycle.
	DefaultQueryPause = time.Second
)

// Watcher owns the notified set and drives cycles over the watch list. All
// access to the set happens under mu, so concurrent triggers never notify
// the same identifier twice.
type Watcher struct {
	searcher wildberries.Searcher
	notifier notify.Notifier
	store    state.Store
	queries  []domain.QuerySpec
	log      *slog.Logger

	interval   time.Duration
	queryPause time.Duration

	mu       sync.Mutex
	notified state.Set
	last     *domain.CycleReport
}

// Option configures the Watcher.
type Option func(*Watcher)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithInterval sets the pause between cycles in Run.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithQueryPause sets the pause after each query.
func WithQueryPause(d time.Duration) Option {
	return func(w *Watcher) {
		w.queryPause = d
	}
}

// New creates a Watcher over queries. The notified set is loaded from st on
// first use.
func New(
	s wildberries.Searcher,
	n notify.Notifier,
	st state.Store,
	queries []domain.QuerySpec,
	opts ...Option,
) *Watcher {
	w := &Watcher{
		searcher:   s,
		notifier:   n,
		store:      st,
		queries:    queries,
		log:        slog.Default(),
		interval:   DefaultInterval,
		queryPause: DefaultQueryPause,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load reads the notified set from the store if it has not been loaded yet
// and returns its size. A load failure is logged and leaves an empty set.
func (w *Watcher) Load(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.loadLocked(ctx)
	return len(w.notified)
}

// Run executes cycles until ctx is done, sleeping for the configured
// interval between them.
func (w *Watcher) Run(ctx context.Context) {
	texts := make([]string, len(w.queries))
	for i, q := range w.queries {
		texts[i] = q.Text
	}
	w.log.Info("watcher started", "queries", texts, "interval", w.interval)

	for {
		report := w.RunCycle(ctx)
		if ctx.Err() != nil {
			break
		}

		w.log.Info("cycle finished",
			"cycle_id", report.CycleID,
			"notified", report.Notified,
			"next_in", w.interval,
		)
		if !sleep(ctx, w.interval) {
			break
		}
	}

	w.log.Info("watcher stopped")
}

// RunCycle performs one pass over the watch list, waiting for any cycle
// already in progress.
func (w *Watcher) RunCycle(ctx context.Context) domain.CycleReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.cycleLocked(ctx)
}

// TryRunCycle is RunCycle that returns false instead of waiting when a
// cycle is already in progress.
func (w *Watcher) TryRunCycle(ctx context.Context) (domain.CycleReport, bool) {
	if !w.mu.TryLock() {
		return domain.CycleReport{}, false
	}
	defer w.mu.Unlock()

	return w.cycleLocked(ctx), true
}

// Queries returns the configured watch list.
func (w *Watcher) Queries() []domain.QuerySpec {
	return append([]domain.QuerySpec(nil), w.queries...)
}

// Notified returns the notified identifiers in lexical order.
func (w *Watcher) Notified(ctx context.Context) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.loadLocked(ctx)
	return w.notified.Sorted()
}

// LastReport returns the report of the most recent finished cycle.
func (w *Watcher) LastReport() (domain.CycleReport, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.last == nil {
		return domain.CycleReport{}, false
	}
	return *w.last, true
}

// loadLocked must be called with mu held.
func (w *Watcher) loadLocked(ctx context.Context) {
	if w.notified != nil {
		return
	}

	set, err := w.store.Load(ctx)
	if err != nil {
		w.log.Warn("loading notified set failed, starting empty", "error", err)
	}
	if set == nil {
		set = state.Set{}
	}

	w.notified = set
	metrics.NotifiedSetSize.Set(float64(len(set)))
}

// cycleLocked must be called with mu held.
func (w *Watcher) cycleLocked(ctx context.Context) domain.CycleReport {
	w.loadLocked(ctx)

	start := time.Now()
	report := domain.CycleReport{
		CycleID:   uuid.NewString(),
		StartedAt: start,
	}
	log := w.log.With("cycle_id", report.CycleID)

	for _, q := range w.queries {
		if ctx.Err() != nil {
			break
		}
		w.runQuery(ctx, log, q, &report)
		if !sleep(ctx, w.queryPause) {
			break
		}
	}

	report.FinishedAt = time.Now()
	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(report.FinishedAt.Sub(start).Seconds())
	metrics.LastCycleTimestamp.Set(float64(report.FinishedAt.Unix()))

	w.last = &report
	return report
}

func (w *Watcher) runQuery(
	ctx context.Context,
	log *slog.Logger,
	q domain.QuerySpec,
	report *domain.CycleReport,
) {
	report.Queries++
	defer func() {
		if r := recover(); r != nil {
			report.Failures++
			log.Error("query processing panicked", "query", q.Text, "panic", r)
		}
	}()

	log.Info("searching", "query", q.Text, "threshold", q.Threshold.String())

	items, err := w.searcher.Search(ctx, q.Text)
	if err != nil {
		report.Failures++
		metrics.QueryFailuresTotal.Inc()
		log.Warn("search failed", "query", q.Text, "error", err)
		return
	}

	report.Items += len(items)
	for i := range items {
		w.processItem(ctx, log, q, &items[i], report)
	}
}

func (w *Watcher) processItem(
	ctx context.Context,
	log *slog.Logger,
	q domain.QuerySpec,
	item *domain.PricedItem,
	report *domain.CycleReport,
) {
	defer func() {
		if r := recover(); r != nil {
			report.Failures++
			log.Error("item processing panicked", "query", q.Text, "item_id", item.ID, "panic", r)
		}
	}()

	if !item.AtOrBelow(q.Threshold) {
		return
	}
	report.Matched++
	metrics.ItemsMatchedTotal.Inc()

	id := Identifier(q.Text, item)
	if w.notified.Has(id) {
		report.Duplicates++
		return
	}

	if err := w.notifier.Notify(ctx, notify.FormatAlert(*item, q.Text)); err != nil {
		report.Failures++
		metrics.NotificationFailuresTotal.Inc()
		log.Warn("notification failed", "notification_id", id, "error", err)
		return
	}
	report.Notified++
	metrics.NotificationsSentTotal.Inc()

	w.notified.Add(id)
	metrics.NotifiedSetSize.Set(float64(len(w.notified)))

	// The set advances even when the save fails.
	if err := w.store.Save(context.WithoutCancel(ctx), w.notified); err != nil {
		metrics.StateSaveFailuresTotal.Inc()
		log.Error("saving notified set failed", "notification_id", id, "error", err)
	}

	log.Info("notified", "notification_id", id, "price", item.Price.String())
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
