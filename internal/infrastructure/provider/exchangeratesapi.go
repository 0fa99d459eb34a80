package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fxconvert/internal/application"
	"fxconvert/internal/domain"
	"fxconvert/internal/infrastructure/httpx"
	"fxconvert/internal/infrastructure/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	SeriesModeHistorical = "historical"
	SeriesModeTimeseries = "timeseries"
)

type ExchangeRatesAPIProvider struct {
	BaseURL    string
	APIKey     string
	Client     *httpx.Client
	SeriesMode string
	Metrics    *metrics.Metrics
}

var _ application.RateProvider = (*ExchangeRatesAPIProvider)(nil)

type xrError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type xrEnvelope struct {
	Success bool     `json:"success"`
	Error   *xrError `json:"error,omitempty"`
}

func (e xrEnvelope) err() error {
	if e.Success {
		return nil
	}
	if e.Error != nil {
		return fmt.Errorf("exchangeratesapi: %d %s", e.Error.Code, e.Error.Info)
	}
	return errors.New("exchangeratesapi: unsuccessful response")
}

type xrSymbolsResp struct {
	xrEnvelope
	Symbols map[string]string `json:"symbols"`
}

type xrRatesResp struct {
	xrEnvelope
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
}

type xrTimeseriesResp struct {
	xrEnvelope
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

func (p *ExchangeRatesAPIProvider) Symbols(ctx context.Context) (domain.Symbols, error) {
	var body xrSymbolsResp
	if err := p.get(ctx, "symbols", nil, &body); err != nil {
		return nil, err
	}
	if err := body.err(); err != nil {
		return nil, err
	}
	if body.Symbols == nil {
		return nil, errors.New("exchangeratesapi: missing symbols")
	}
	return domain.Symbols(body.Symbols), nil
}

func (p *ExchangeRatesAPIProvider) Latest(ctx context.Context, pair domain.Pair) (float64, error) {
	return p.ratesOn(ctx, "latest", pair)
}

func (p *ExchangeRatesAPIProvider) Series(ctx context.Context, pair domain.Pair, dates []string) ([]domain.SeriesPoint, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	if p.SeriesMode == SeriesModeTimeseries {
		return p.timeseries(ctx, pair, dates)
	}
	return p.historical(ctx, pair, dates)
}

// historical issues one dated request per day, concurrently.
func (p *ExchangeRatesAPIProvider) historical(ctx context.Context, pair domain.Pair, dates []string) ([]domain.SeriesPoint, error) {
	out := make([]domain.SeriesPoint, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dates {
		i, d := i, d
		g.Go(func() error {
			rate, err := p.ratesOn(gctx, d, pair)
			if err != nil {
				return fmt.Errorf("%s: %w", d, err)
			}
			out[i] = domain.SeriesPoint{Date: d, Rate: rate}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *ExchangeRatesAPIProvider) timeseries(ctx context.Context, pair domain.Pair, dates []string) ([]domain.SeriesPoint, error) {
	q := pairQuery(pair)
	q.Set("start_date", dates[0])
	q.Set("end_date", dates[len(dates)-1])
	var body xrTimeseriesResp
	if err := p.get(ctx, "timeseries", q, &body); err != nil {
		return nil, err
	}
	if err := body.err(); err != nil {
		return nil, err
	}
	out := make([]domain.SeriesPoint, 0, len(dates))
	for _, d := range dates {
		day, ok := body.Rates[d]
		if !ok {
			return nil, fmt.Errorf("exchangeratesapi: missing rates for %s", d)
		}
		rate, err := crossRate(body.Base, day, pair)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.SeriesPoint{Date: d, Rate: rate})
	}
	return out, nil
}

// ratesOn queries "latest" or a YYYY-MM-DD historical endpoint.
func (p *ExchangeRatesAPIProvider) ratesOn(ctx context.Context, endpoint string, pair domain.Pair) (float64, error) {
	var body xrRatesResp
	if err := p.get(ctx, endpoint, pairQuery(pair), &body); err != nil {
		return 0, err
	}
	if err := body.err(); err != nil {
		return 0, err
	}
	return crossRate(body.Base, body.Rates, pair)
}

func pairQuery(pair domain.Pair) url.Values {
	q := url.Values{}
	q.Set("base", pair.Source)
	symbols := pair.Target
	if pair.Source != pair.Target {
		symbols += "," + pair.Source
	}
	q.Set("symbols", symbols)
	return q
}

// crossRate returns source->target from rates quoted against base. Plans that
// ignore the base parameter answer in EUR, so both legs are requested.
func crossRate(base string, rates map[string]float64, pair domain.Pair) (float64, error) {
	leg := func(c string) (float64, error) {
		if c == base {
			return 1.0, nil
		}
		v, ok := rates[c]
		if !ok {
			return 0, fmt.Errorf("exchangeratesapi: missing rate for %s", c)
		}
		return v, nil
	}
	toTarget, err := leg(pair.Target)
	if err != nil {
		return 0, err
	}
	if pair.Source == base {
		return toTarget, nil
	}
	toSource, err := leg(pair.Source)
	if err != nil {
		return 0, err
	}
	if toSource == 0 {
		return 0, errors.New("exchangeratesapi: zero rate for source currency")
	}
	return toTarget / toSource, nil
}

func (p *ExchangeRatesAPIProvider) get(ctx context.Context, endpoint string, q url.Values, out any) (err error) {
	if p.BaseURL == "" || p.APIKey == "" {
		return errors.New("exchangeratesapi: missing configuration")
	}
	label := endpoint
	if _, perr := time.Parse(domain.DateLayout, endpoint); perr == nil {
		label = SeriesModeHistorical
	}
	start := time.Now()
	defer func() { p.Metrics.ObserveProvider(label, err, time.Since(start)) }()

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("exchangeratesapi: invalid base url: %w", err)
	}
	u = u.JoinPath("v1", endpoint)
	if q == nil {
		q = url.Values{}
	}
	q.Set("access_key", p.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("exchangeratesapi: create request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	if err := client.DoJSON(ctx, req, out); err != nil {
		return fmt.Errorf("exchangeratesapi: %s: %w", label, err)
	}
	return nil
}
