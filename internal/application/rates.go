package application

import (
	"context"
	"fmt"

	"fxconvert/internal/domain"

	"go.uber.org/zap"
)

// RateService wraps the provider with the catch-and-default contract: every
// failure is logged, reported as a notice and replaced by a safe value.
type RateService struct {
	provider RateProvider
	notifier Notifier
	clock    Clock
	log      *zap.Logger
}

type Option func(*RateService)

func WithClock(c Clock) Option        { return func(s *RateService) { s.clock = c } }
func WithNotifier(n Notifier) Option  { return func(s *RateService) { s.notifier = n } }
func WithLogger(l *zap.Logger) Option { return func(s *RateService) { s.log = l } }

func NewRateService(provider RateProvider, opts ...Option) *RateService {
	s := &RateService{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Log: s.log}
	}
	return s
}

// GetSymbols returns nil on failure.
func (s *RateService) GetSymbols(ctx context.Context) domain.Symbols {
	symbols, err := s.provider.Symbols(ctx)
	if err == nil && symbols == nil {
		err = fmt.Errorf("empty symbol list")
	}
	if err != nil {
		s.log.Warn("rates.symbols_failed", zap.Error(err))
		s.notify(ctx, symbolsNotice())
		return nil
	}
	return symbols
}

// GetRate returns 0 on failure.
func (s *RateService) GetRate(ctx context.Context, source, target string) float64 {
	pair := domain.NewPair(source, target)
	rate, err := s.latest(ctx, pair)
	if err != nil {
		s.log.Warn("rates.latest_failed", zap.String("pair", pair.String()), zap.Error(err))
		s.notify(ctx, rateNotice(pair))
		return 0
	}
	return rate
}

// GetSeries returns exactly domain.SeriesDays points, oldest first, or an
// empty slice on failure.
func (s *RateService) GetSeries(ctx context.Context, source, target string) []domain.SeriesPoint {
	pair := domain.NewPair(source, target)
	points, err := s.series(ctx, pair)
	if err != nil {
		s.log.Warn("rates.series_failed", zap.String("pair", pair.String()), zap.Error(err))
		s.notify(ctx, seriesNotice(pair))
		return []domain.SeriesPoint{}
	}
	return points
}

func (s *RateService) latest(ctx context.Context, pair domain.Pair) (float64, error) {
	if err := pair.Validate(); err != nil {
		return 0, err
	}
	rate, err := s.provider.Latest(ctx, pair)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidRate, rate)
	}
	return rate, nil
}

func (s *RateService) series(ctx context.Context, pair domain.Pair) ([]domain.SeriesPoint, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	dates := domain.SeriesDates(s.clock.Now())
	points, err := s.provider.Series(ctx, pair, dates)
	if err != nil {
		return nil, err
	}
	if len(points) != len(dates) {
		return nil, fmt.Errorf("series: got %d points, want %d", len(points), len(dates))
	}
	for i, p := range points {
		if p.Date != dates[i] {
			return nil, fmt.Errorf("series: point %d dated %s, want %s", i, p.Date, dates[i])
		}
		if p.Rate <= 0 {
			return nil, fmt.Errorf("series: %w on %s", domain.ErrInvalidRate, p.Date)
		}
	}
	return points, nil
}

func (s *RateService) notify(ctx context.Context, n domain.Notice) {
	if c := collectorFrom(ctx); c != nil {
		c.add(n)
	}
	s.notifier.Notify(ctx, n)
}
