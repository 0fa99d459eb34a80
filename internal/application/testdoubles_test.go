package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"fxconvert/internal/domain"
)

var errProvider = errors.New("provider down")

type fakeProvider struct {
	mu      sync.Mutex
	symbols domain.Symbols
	rates   map[string]float64
	series  []domain.SeriesPoint
	err     error
	calls   map[string]int
}

func (f *fakeProvider) hit(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeProvider) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeProvider) Symbols(context.Context) (domain.Symbols, error) {
	f.hit("symbols")
	if f.err != nil {
		return nil, f.err
	}
	return f.symbols, nil
}

func (f *fakeProvider) Latest(_ context.Context, p domain.Pair) (float64, error) {
	f.hit("latest")
	if f.err != nil {
		return 0, f.err
	}
	r, ok := f.rates[p.Key()]
	if !ok {
		return 0, errors.New("no rate")
	}
	return r, nil
}

func (f *fakeProvider) Series(_ context.Context, _ domain.Pair, dates []string) ([]domain.SeriesPoint, error) {
	f.hit("series")
	if f.err != nil {
		return nil, f.err
	}
	if f.series != nil {
		return f.series, nil
	}
	out := make([]domain.SeriesPoint, len(dates))
	for i, d := range dates {
		out[i] = domain.SeriesPoint{Date: d, Rate: 1 + float64(i)/100}
	}
	return out, nil
}

type memCache struct {
	mu    sync.Mutex
	store map[string]float64
}

func (m *memCache) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[key]
	return r, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		m.store = map[string]float64{}
	}
	m.store[key] = rate
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notices {
		out = append(out, n.Title)
	}
	return out
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

// manualDebouncer keeps only the last scheduled function until fire.
type manualDebouncer struct {
	pending   func()
	scheduled int
}

func (m *manualDebouncer) Do(fn func()) {
	m.pending = fn
	m.scheduled++
}

func (m *manualDebouncer) Stop() { m.pending = nil }

func (m *manualDebouncer) fire() {
	fn := m.pending
	m.pending = nil
	if fn != nil {
		fn()
	}
}

type countingObserver struct {
	hits, misses int
	fallbacks    []string
}

func (o *countingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func (o *countingObserver) Fallback(kind string) { o.fallbacks = append(o.fallbacks, kind) }

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestRates(p *fakeProvider, n *recordingNotifier) *RateService {
	return NewRateService(p, WithNotifier(n), WithClock(fakeClock{t: testNow}))
}
