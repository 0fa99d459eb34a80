package provider_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"fxconvert/internal/domain"
	"fxconvert/internal/infrastructure/httpx"
	"fxconvert/internal/infrastructure/metrics"
	"fxconvert/internal/infrastructure/provider"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r), nil }

func httpClient(resBody string, code int) *httpx.Client {
	return routedClient(func(*http.Request) (string, int) { return resBody, code })
}

func routedClient(route func(*http.Request) (string, int)) *httpx.Client {
	return &httpx.Client{HTTP: &http.Client{
		Timeout: 2 * time.Second,
		Transport: roundTripFunc(func(r *http.Request) *http.Response {
			body, code := route(r)
			return &http.Response{
				StatusCode: code,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
				Request:    r,
			}
		}),
	}}
}

func newProvider(c *httpx.Client) *provider.ExchangeRatesAPIProvider {
	return &provider.ExchangeRatesAPIProvider{
		BaseURL: "http://api.exchangeratesapi.io",
		APIKey:  "test",
		Client:  c,
	}
}

var eurUSD = domain.Pair{Source: "EUR", Target: "USD"}

func TestSymbols(t *testing.T) {
	body := `{"success": true, "symbols": {"EUR": "Euro", "USD": "United States Dollar"}}`
	var path, key string
	c := routedClient(func(r *http.Request) (string, int) {
		path, key = r.URL.Path, r.URL.Query().Get("access_key")
		return body, 200
	})
	got, err := newProvider(c).Symbols(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Euro", got["EUR"])
	require.Equal(t, "/v1/symbols", path)
	require.Equal(t, "test", key)
}

func TestSymbols_APIError(t *testing.T) {
	body := `{"success": false, "error": {"code": 101, "type": "invalid_access_key", "info": "You have not supplied a valid API Access Key."}}`
	_, err := newProvider(httpClient(body, 200)).Symbols(context.Background())
	require.ErrorContains(t, err, "101")
}

func TestLatest_BaseHonoured(t *testing.T) {
	body := `{"success": true, "timestamp": 1731240000, "base": "EUR", "date": "2024-11-10", "rates": {"USD": 1.0712}}`
	var q map[string][]string
	c := routedClient(func(r *http.Request) (string, int) {
		q = r.URL.Query()
		return body, 200
	})
	rate, err := newProvider(c).Latest(context.Background(), eurUSD)
	require.NoError(t, err)
	require.InDelta(t, 1.0712, rate, 1e-9)
	require.Equal(t, []string{"EUR"}, q["base"])
	require.Equal(t, []string{"USD,EUR"}, q["symbols"])
}

func TestLatest_CrossRateWhenBaseIgnored(t *testing.T) {
	body := `{"success": true, "base": "EUR", "date": "2025-11-08", "rates": {"USD": 1.20, "MXN": 20.00}}`
	p := newProvider(httpClient(body, 200))

	rate, err := p.Latest(context.Background(), domain.Pair{Source: "USD", Target: "MXN"})
	require.NoError(t, err)
	require.InDelta(t, 16.6667, rate, 1e-4)

	rate, err = p.Latest(context.Background(), domain.Pair{Source: "USD", Target: "EUR"})
	require.NoError(t, err)
	require.InDelta(t, 0.8333, rate, 1e-4)
}

func TestLatest_MissingTarget(t *testing.T) {
	body := `{"success": true, "base": "EUR", "rates": {}}`
	_, err := newProvider(httpClient(body, 200)).Latest(context.Background(), eurUSD)
	require.ErrorContains(t, err, "missing rate for USD")
}

func TestLatest_HTTPStatus(t *testing.T) {
	_, err := newProvider(httpClient("nope", 401)).Latest(context.Background(), eurUSD)
	require.ErrorContains(t, err, "status 401")
}

func TestLatest_MissingConfiguration(t *testing.T) {
	p := &provider.ExchangeRatesAPIProvider{BaseURL: "http://api.exchangeratesapi.io"}
	_, err := p.Latest(context.Background(), eurUSD)
	require.ErrorContains(t, err, "missing configuration")
}

var week = []string{"2024-05-04", "2024-05-05", "2024-05-06", "2024-05-07", "2024-05-08", "2024-05-09", "2024-05-10"}

func TestSeries_Historical(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	c := routedClient(func(r *http.Request) (string, int) {
		date := strings.TrimPrefix(r.URL.Path, "/v1/")
		mu.Lock()
		seen[date] = true
		mu.Unlock()
		day := date[len(date)-2:]
		return `{"success": true, "historical": true, "base": "EUR", "date": "` + date + `", "rates": {"USD": 1.` + day + `}}`, 200
	})
	reg := prometheus.NewRegistry()
	p := newProvider(c)
	p.Metrics = metrics.New(reg)

	got, err := p.Series(context.Background(), eurUSD, week)
	require.NoError(t, err)
	require.Len(t, got, 7)
	for i, d := range week {
		require.Equal(t, d, got[i].Date)
		require.True(t, seen[d], d)
	}
	require.InDelta(t, 1.04, got[0].Rate, 1e-9)
	require.InDelta(t, 1.10, got[6].Rate, 1e-9)
	require.Equal(t, 7.0, testutil.ToFloat64(p.Metrics.ProviderRequestsTotal.WithLabelValues("historical", "ok")))
}

func TestSeries_HistoricalOneDayFails(t *testing.T) {
	c := routedClient(func(r *http.Request) (string, int) {
		if strings.HasSuffix(r.URL.Path, "2024-05-07") {
			return `{"success": false, "error": {"code": 106, "info": "no rates"}}`, 200
		}
		return `{"success": true, "base": "EUR", "rates": {"USD": 1.1}}`, 200
	})
	_, err := newProvider(c).Series(context.Background(), eurUSD, week)
	require.ErrorContains(t, err, "2024-05-07")
}

func TestSeries_Timeseries(t *testing.T) {
	body := `{"success": true, "timeseries": true, "start_date": "2024-05-04", "end_date": "2024-05-10", "base": "EUR", "rates": {
		"2024-05-04": {"USD": 1.04}, "2024-05-05": {"USD": 1.05}, "2024-05-06": {"USD": 1.06},
		"2024-05-07": {"USD": 1.07}, "2024-05-08": {"USD": 1.08}, "2024-05-09": {"USD": 1.09},
		"2024-05-10": {"USD": 1.10}}}`
	var q map[string][]string
	var path string
	c := routedClient(func(r *http.Request) (string, int) {
		q, path = r.URL.Query(), r.URL.Path
		return body, 200
	})
	p := newProvider(c)
	p.SeriesMode = provider.SeriesModeTimeseries

	got, err := p.Series(context.Background(), eurUSD, week)
	require.NoError(t, err)
	require.Len(t, got, 7)
	require.Equal(t, "/v1/timeseries", path)
	require.Equal(t, []string{"2024-05-04"}, q["start_date"])
	require.Equal(t, []string{"2024-05-10"}, q["end_date"])
	require.InDelta(t, 1.07, got[3].Rate, 1e-9)
}

func TestSeries_TimeseriesMissingDay(t *testing.T) {
	body := `{"success": true, "base": "EUR", "rates": {"2024-05-04": {"USD": 1.04}}}`
	p := newProvider(httpClient(body, 200))
	p.SeriesMode = provider.SeriesModeTimeseries
	_, err := p.Series(context.Background(), eurUSD, week)
	require.ErrorContains(t, err, "missing rates for 2024-05-05")
}

func TestFake(t *testing.T) {
	f := provider.NewFake(1.25)
	ctx := context.Background()
	rate, err := f.Latest(ctx, eurUSD)
	require.NoError(t, err)
	require.InDelta(t, 1.25, rate, 1e-9)
	rate, _ = f.Latest(ctx, eurUSD.Reversed())
	require.InDelta(t, 0.8, rate, 1e-9)
	points, err := f.Series(ctx, eurUSD, week)
	require.NoError(t, err)
	require.Len(t, points, 7)
	symbols, err := f.Symbols(ctx)
	require.NoError(t, err)
	require.Contains(t, symbols, "EUR")
}
