package provider

import (
	"context"

	"fxconvert/internal/application"
	"fxconvert/internal/domain"
)

// Ensure Fake implements application.RateProvider.
var _ application.RateProvider = (*Fake)(nil)

// Fake quotes every pair at a fixed price and its inverse.
type Fake struct {
	price float64
}

func NewFake(price float64) *Fake { return &Fake{price: price} }

func (f *Fake) Symbols(context.Context) (domain.Symbols, error) {
	return domain.Symbols{
		"EUR": "Euro",
		"USD": "United States Dollar",
		"GBP": "British Pound Sterling",
		"JPY": "Japanese Yen",
		"MXN": "Mexican Peso",
	}, nil
}

func (f *Fake) Latest(_ context.Context, pair domain.Pair) (float64, error) {
	return f.rate(pair), nil
}

func (f *Fake) Series(_ context.Context, pair domain.Pair, dates []string) ([]domain.SeriesPoint, error) {
	out := make([]domain.SeriesPoint, len(dates))
	for i, d := range dates {
		out[i] = domain.SeriesPoint{Date: d, Rate: f.rate(pair)}
	}
	return out, nil
}

func (f *Fake) rate(pair domain.Pair) float64 {
	switch {
	case pair.Source == pair.Target:
		return 1
	case pair.Source > pair.Target:
		return 1 / f.price
	default:
		return f.price
	}
}
