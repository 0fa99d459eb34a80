package application

import (
	"context"
	"time"

	"fxconvert/internal/domain"
)

// RateProvider is the third-party rate API. Implementations return errors;
// the catch-and-default policy lives in RateService.
type RateProvider interface {
	Symbols(ctx context.Context) (domain.Symbols, error)
	Latest(ctx context.Context, pair domain.Pair) (float64, error)
	// Series returns one point per requested date, in the same order.
	Series(ctx context.Context, pair domain.Pair, dates []string) ([]domain.SeriesPoint, error)
}

// RateCache memoizes rates keyed by domain.Pair.Key.
type RateCache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, rate float64) error
}

type RateArchive interface {
	Append(ctx context.Context, s domain.RateSnapshot) error
	Recent(ctx context.Context, pair domain.Pair, limit int) ([]domain.RateSnapshot, error)
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

// Debouncer runs only the last function handed to Do within its delay window.
type Debouncer interface {
	Do(fn func())
	Stop()
}

// Observer receives converter events for metrics.
type Observer interface {
	CacheLookup(hit bool)
	Fallback(kind string)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type nopObserver struct{}

func (nopObserver) CacheLookup(bool) {}
func (nopObserver) Fallback(string)  {}
