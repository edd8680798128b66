package watcher_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	notifyMocks "github.com/Nikitosik2311/parserwb/internal/notify/mocks"
	"github.com/Nikitosik2311/parserwb/internal/state"
	stateMocks "github.com/Nikitosik2311/parserwb/internal/state/mocks"
	"github.com/Nikitosik2311/parserwb/internal/watcher"
	wbMocks "github.com/Nikitosik2311/parserwb/internal/wildberries/mocks"
	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

var (
	iphone = domain.QuerySpec{Text: "Iphone 16", Threshold: decimal.NewFromInt(50000)}
	aifon  = domain.QuerySpec{Text: "Айфон 16", Threshold: decimal.NewFromInt(50000)}
)

func cheapItem() domain.PricedItem {
	return domain.PricedItem{
		ID:    "123",
		Name:  "iPhone 16",
		Price: decimal.NewFromInt(49999),
		URL:   "https://www.wildberries.ru/catalog/123/detail.aspx",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWatcher(
	s *wbMocks.MockSearcher,
	n *notifyMocks.MockNotifier,
	st *stateMocks.MockStore,
	queries ...domain.QuerySpec,
) *watcher.Watcher {
	return watcher.New(s, n, st, queries,
		watcher.WithLogger(quietLogger()),
		watcher.WithQueryPause(0),
	)
}

func hasID(id string) any {
	return mock.MatchedBy(func(s state.Set) bool { return s.Has(id) })
}

func TestRunCycle_NotifiesAndPersists(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.MatchedBy(func(text string) bool {
		return assert.Contains(t, text, "<b>49999 ₽</b>") &&
			assert.Contains(t, text, "Запрос: Iphone 16")
	})).Return(nil).Once()
	store.EXPECT().Save(mock.Anything, hasID("Iphone 16__123__49999")).Return(nil).Once()

	w := newWatcher(searcher, notifier, store, iphone)
	report := w.RunCycle(context.Background())

	assert.NotEmpty(t, report.CycleID)
	assert.Equal(t, 1, report.Queries)
	assert.Equal(t, 1, report.Items)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Notified)
	assert.Zero(t, report.Failures)
	assert.Equal(t, []string{"Iphone 16__123__49999"}, w.Notified(context.Background()))

	last, ok := w.LastReport()
	require.True(t, ok)
	assert.Equal(t, report.CycleID, last.CycleID)
}

func TestRunCycle_NotifiesAtMostOnce(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return([]domain.PricedItem{cheapItem(), cheapItem()}, nil).Times(3)
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()

	w := newWatcher(searcher, notifier, store, iphone)

	first := w.RunCycle(context.Background())
	assert.Equal(t, 1, first.Notified)
	assert.Equal(t, 1, first.Duplicates)

	for range 2 {
		r := w.RunCycle(context.Background())
		assert.Zero(t, r.Notified)
		assert.Equal(t, 2, r.Duplicates)
	}
}

func TestRunCycle_SkipsAlreadyPersisted(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).
		Return(state.NewSet("Iphone 16__123__49999"), nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Once()

	w := newWatcher(searcher, notifier, store, iphone)
	report := w.RunCycle(context.Background())

	assert.Equal(t, 1, report.Duplicates)
	assert.Zero(t, report.Notified)
}

func TestRunCycle_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		price      string
		wantNotify bool
	}{
		{name: "below", price: "49999", wantNotify: true},
		{name: "equal", price: "50000", wantNotify: true},
		{name: "above by a kopeck", price: "50000.01", wantNotify: false},
		{name: "far above", price: "120000", wantNotify: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			searcher := wbMocks.NewMockSearcher(t)
			notifier := notifyMocks.NewMockNotifier(t)
			store := stateMocks.NewMockStore(t)

			item := cheapItem()
			item.Price = decimal.RequireFromString(tt.price)

			store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
			searcher.EXPECT().Search(mock.Anything, "Iphone 16").
				Return([]domain.PricedItem{item}, nil).Once()
			if tt.wantNotify {
				notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
				store.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()
			}

			report := newWatcher(searcher, notifier, store, iphone).RunCycle(context.Background())
			if tt.wantNotify {
				assert.Equal(t, 1, report.Notified)
			} else {
				assert.Zero(t, report.Matched)
			}
		})
	}
}

func TestRunCycle_NotifyFailureRetriesNextCycle(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Twice()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).
		Return(errors.New("telegram down")).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().Save(mock.Anything, hasID("Iphone 16__123__49999")).Return(nil).Once()

	w := newWatcher(searcher, notifier, store, iphone)

	first := w.RunCycle(context.Background())
	assert.Zero(t, first.Notified)
	assert.Equal(t, 1, first.Failures)
	assert.Empty(t, w.Notified(context.Background()))

	second := w.RunCycle(context.Background())
	assert.Equal(t, 1, second.Notified)
}

func TestRunCycle_SaveFailureStillAdvancesSet(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Twice()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().Save(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	w := newWatcher(searcher, notifier, store, iphone)

	first := w.RunCycle(context.Background())
	assert.Equal(t, 1, first.Notified)

	second := w.RunCycle(context.Background())
	assert.Zero(t, second.Notified)
	assert.Equal(t, 1, second.Duplicates)
}

func TestRunCycle_LoadFailureStartsEmpty(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(nil, errors.New("corrupt")).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()

	w := newWatcher(searcher, notifier, store, iphone)
	assert.Zero(t, w.Load(context.Background()))

	report := w.RunCycle(context.Background())
	assert.Equal(t, 1, report.Notified)
}

func TestRunCycle_SearchFailureContinues(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		Return(nil, errors.New("timeout")).Once()
	searcher.EXPECT().Search(mock.Anything, "Айфон 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Once()
	store.EXPECT().Save(mock.Anything, hasID("Айфон 16__123__49999")).Return(nil).Once()

	report := newWatcher(searcher, notifier, store, iphone, aifon).RunCycle(context.Background())

	assert.Equal(t, 2, report.Queries)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, 1, report.Notified)
}

func TestRunCycle_SameItemDifferentQueries(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, mock.Anything).
		Return([]domain.PricedItem{cheapItem()}, nil).Twice()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).Return(nil).Twice()
	store.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Twice()

	w := newWatcher(searcher, notifier, store, iphone, aifon)
	report := w.RunCycle(context.Background())

	assert.Equal(t, 2, report.Notified)
	assert.Equal(t, []string{"Iphone 16__123__49999", "Айфон 16__123__49999"}, w.Notified(context.Background()))
}

func TestRunCycle_RecoversPanics(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		RunAndReturn(func(context.Context, string) ([]domain.PricedItem, error) {
			panic("boom")
		}).Once()
	searcher.EXPECT().Search(mock.Anything, "Айфон 16").
		Return([]domain.PricedItem{cheapItem()}, nil).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, string) error {
			panic("notifier exploded")
		}).Once()

	report := newWatcher(searcher, notifier, store, iphone, aifon).RunCycle(context.Background())

	assert.Equal(t, 2, report.Queries)
	assert.Equal(t, 2, report.Failures)
	assert.Zero(t, report.Notified)
}

func TestRunCycle_CanceledContextStops(t *testing.T) {
	t.Parallel()

	searcher := wbMocks.NewMockSearcher(t)
	notifier := notifyMocks.NewMockNotifier(t)
	store := stateMocks.NewMockStore(t)

	ctx, cancel := context.WithCancel(context.Background())

	store.EXPECT().Load(mock.Anything).Return(state.Set{}, nil).Once()
	searcher.EXPECT().Search(mock.Anything, "Iphone 16").
		RunAndReturn(func(context.Context, string) ([]domain.PricedItem, error) {
			cancel()
			return nil, context.Canceled
		}).Once()

	w := watcher.New(searcher, notifier, store, []domain.QuerySpec{iphone, aifon},
		watcher.WithLogger(quietLogger()),
		watcher.WithQueryPause(time.Hour),
	)
	report := w.RunCycle(ctx)

	assert.Equal(t, 1, report.Queries)
}

// fakeSearcher counts calls and always returns the same item.
type fakeSearcher struct {
	calls atomic.Int32
	block chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, _ string) ([]domain.PricedItem, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	return []domain.PricedItem{cheapItem()}, nil
}

// memStore is an in-memory state.Store.
type memStore struct {
	mu  sync.Mutex
	set state.Set
}

func (m *memStore) Load(context.Context) (state.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set == nil {
		return state.Set{}, nil
	}
	return m.set.Clone(), nil
}

func (m *memStore) Save(_ context.Context, s state.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = s.Clone()
	return nil
}

func (*memStore) Ping(context.Context) error { return nil }

// countingNotifier counts delivered messages.
type countingNotifier struct {
	sent atomic.Int32
}

func (c *countingNotifier) Notify(context.Context, string) error {
	c.sent.Add(1)
	return nil
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{}
	notifier := &countingNotifier{}
	store := &memStore{}

	w := watcher.New(searcher, notifier, store, []domain.QuerySpec{iphone},
		watcher.WithLogger(quietLogger()),
		watcher.WithQueryPause(0),
		watcher.WithInterval(5*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return searcher.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, int32(1), notifier.sent.Load())
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Has("Iphone 16__123__49999"))
}

func TestRun_PersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	notifier := &countingNotifier{}

	for range 2 {
		w := watcher.New(&fakeSearcher{}, notifier, store, []domain.QuerySpec{iphone},
			watcher.WithLogger(quietLogger()),
			watcher.WithQueryPause(0),
		)
		w.RunCycle(context.Background())
	}

	assert.Equal(t, int32(1), notifier.sent.Load())
}

func TestTryRunCycle_BusyReturnsFalse(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{block: make(chan struct{})}
	w := watcher.New(searcher, &countingNotifier{}, &memStore{}, []domain.QuerySpec{iphone},
		watcher.WithLogger(quietLogger()),
		watcher.WithQueryPause(0),
	)

	done := make(chan struct{})
	go func() {
		w.RunCycle(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return searcher.calls.Load() == 1 }, time.Second, time.Millisecond)

	_, ok := w.TryRunCycle(context.Background())
	assert.False(t, ok)

	close(searcher.block)
	<-done

	report, ok := w.TryRunCycle(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 1, report.Duplicates)
}

func TestQueries_ReturnsCopy(t *testing.T) {
	t.Parallel()

	w := watcher.New(&fakeSearcher{}, &countingNotifier{}, &memStore{}, []domain.QuerySpec{iphone, aifon})
	q := w.Queries()
	require.Len(t, q, 2)
	q[0].Text = "changed"
	assert.Equal(t, "Iphone 16", w.Queries()[0].Text)

	_, ok := w.LastReport()
	assert.False(t, ok)
}
