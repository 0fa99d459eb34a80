package application

import (
	"context"
	"strings"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	fallbackStale   = "stale"
	fallbackDefault = "default"
)

// Converter memoizes rates and applies them to amounts.
type Converter struct {
	rates *RateService
	cache RateCache
	obs   Observer
	log   *zap.Logger
}

type ConverterOption func(*Converter)

func WithObserver(o Observer) ConverterOption {
	return func(c *Converter) { c.obs = o }
}

func WithConverterLogger(l *zap.Logger) ConverterOption {
	return func(c *Converter) { c.log = l }
}

func NewConverter(rates *RateService, cache RateCache, opts ...ConverterOption) *Converter {
	c := &Converter{rates: rates, cache: cache}
	for _, opt := range opts {
		opt(c)
	}
	if c.obs == nil {
		c.obs = nopObserver{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Rate returns the rate for source->target. Outside Pro mode a cached rate
// is served without calling the provider. A successful fetch caches the
// rate and its inverse. When the fetch fails the cached rate is used, or 1
// if there is none.
func (c *Converter) Rate(ctx context.Context, source, target string, pro bool) float64 {
	pair := domain.NewPair(source, target)
	if !pro {
		if rate, ok := c.lookup(ctx, pair.Key()); ok {
			return rate
		}
	}

	rate := c.rates.GetRate(ctx, pair.Source, pair.Target)
	if rate == 0 {
		if cached, ok := c.lookup(ctx, pair.Key()); ok {
			c.obs.Fallback(fallbackStale)
			return cached
		}
		c.obs.Fallback(fallbackDefault)
		return 1
	}

	c.store(ctx, pair.Key(), rate)
	c.store(ctx, pair.Reversed().Key(), 1/rate)
	return rate
}

// Convert multiplies amount by the source->target rate and formats the
// result with 2 decimals, or 6 in Pro mode.
func (c *Converter) Convert(ctx context.Context, amount, source, target string, pro bool) (domain.Conversion, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || strings.TrimSpace(source) == "" {
		return domain.Conversion{}, ErrNothingToConvert
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Conversion{}, ErrInvalidAmount
	}

	pair := domain.NewPair(source, target)
	rate := c.Rate(ctx, pair.Source, pair.Target, pro)
	precision := domain.Precision(pro)
	return domain.Conversion{
		Amount:    a.InexactFloat64(),
		Pair:      pair,
		Rate:      rate,
		Value:     a.Mul(decimal.NewFromFloat(rate)).StringFixed(precision),
		Precision: precision,
	}, nil
}

func (c *Converter) lookup(ctx context.Context, key string) (float64, bool) {
	rate, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("converter.cache_get_failed", zap.String("key", key), zap.Error(err))
		ok = false
	}
	ok = ok && rate > 0
	c.obs.CacheLookup(ok)
	return rate, ok
}

func (c *Converter) store(ctx context.Context, key string, rate float64) {
	if err := c.cache.Set(ctx, key, rate); err != nil {
		c.log.Warn("converter.cache_set_failed", zap.String("key", key), zap.Error(err))
	}
}
