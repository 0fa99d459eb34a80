package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fxconvert/internal/application"
	"fxconvert/internal/config"
	"fxconvert/internal/domain"
	"fxconvert/internal/infrastructure/cache"
	infraconfig "fxconvert/internal/infrastructure/config"
	"fxconvert/internal/infrastructure/httpx"
	"fxconvert/internal/infrastructure/logx"
	"fxconvert/internal/infrastructure/metrics"
	"fxconvert/internal/infrastructure/pg"
	"fxconvert/internal/infrastructure/provider"
	redisstore "fxconvert/internal/infrastructure/redis"
	"fxconvert/internal/infrastructure/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMissingDBURL    = errors.New("DATABASE_URL is required when STORAGE=pg")
	ErrUnknownProvider = errors.New("unknown PROVIDER")
	ErrUnknownCache    = errors.New("unknown CACHE_BACKEND")
	ErrUnknownStorage  = errors.New("unknown STORAGE")
)

const fakePrice = 1.2345

func noop() {}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() (config.Config, error) { return config.Load() }

// ProvideMetrics returns a private registry with the Go and process
// collectors plus the fx metrics.
func ProvideMetrics() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, metrics.New(reg)
}

func ProvideRateProvider(cfg config.Config, m *metrics.Metrics) (application.RateProvider, error) {
	switch cfg.Provider {
	case "exchangeratesapi":
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = infraconfig.DefaultRequestTimeout
		}
		return &provider.ExchangeRatesAPIProvider{
			BaseURL: cfg.ExchangeAPIBase,
			APIKey:  cfg.ExchangeAPIKey,
			Client: &httpx.Client{
				HTTP:    &http.Client{Timeout: timeout},
				Retries: cfg.HTTPRetries,
				Limiter: httpx.NewLimiter(cfg.ProviderRPS),
			},
			SeriesMode: cfg.SeriesMode,
			Metrics:    m,
		}, nil
	case "fake", "":
		return provider.NewFake(fakePrice), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func ProvideRedisClient(cfg config.Config) (*redis.Client, func()) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }
}

// ProvideRateCache returns the converter cache. An unreachable Redis is
// logged, not fatal: cache errors degrade to misses.
func ProvideRateCache(ctx context.Context, log *zap.Logger, cfg config.Config) (application.RateCache, func(), error) {
	switch cfg.CacheBackend {
	case "memory", "":
		return cache.NewMemory(cfg.CacheTTL), noop, nil
	case "redis":
		client, cleanup := ProvideRedisClient(cfg)
		rc := redisstore.New(client, cfg.CacheTTL)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return rc, cleanup, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownCache, cfg.CacheBackend)
	}
}

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		return nil, noop, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, dbURL)
	if err != nil {
		return nil, noop, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, noop, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// ProvideArchive returns a nil archive and nil DB when STORAGE=none.
func ProvideArchive(ctx context.Context, log *zap.Logger, cfg config.Config) (application.RateArchive, *pg.DB, func(), error) {
	switch cfg.Storage {
	case "none", "":
		return nil, nil, noop, nil
	case "pg":
		db, cleanup, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			return nil, nil, noop, err
		}
		return pg.NewRateArchive(db), db, cleanup, nil
	default:
		return nil, nil, noop, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage)
	}
}

func ProvideRateService(rp application.RateProvider, log *zap.Logger) *application.RateService {
	return application.NewRateService(rp,
		application.WithLogger(log),
		application.WithNotifier(application.LogNotifier{Log: log}),
	)
}

func ProvideConverter(rates *application.RateService, rc application.RateCache, m *metrics.Metrics, log *zap.Logger) *application.Converter {
	return application.NewConverter(rates, rc,
		application.WithObserver(m),
		application.WithConverterLogger(log),
	)
}

func ProvideWatchPairs(cfg config.Config) ([]domain.Pair, error) {
	pairs := make([]domain.Pair, 0, len(cfg.WatchPairs))
	for _, raw := range cfg.WatchPairs {
		p, err := domain.ParsePair(raw)
		if err != nil {
			return nil, fmt.Errorf("WATCH_PAIRS %q: %w", raw, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func ProvideWorker(cfg config.Config, rp application.RateProvider, archive application.RateArchive, rc application.RateCache, m *metrics.Metrics, log *zap.Logger) (application.Worker, error) {
	pairs, err := ProvideWatchPairs(cfg)
	if err != nil {
		return nil, err
	}
	every := cfg.SnapshotInterval
	if every <= 0 {
		every = infraconfig.DefaultSnapshotEvery
	}
	return &worker.SnapshotWorker{
		Provider:  rp,
		Archive:   archive,
		Cache:     rc,
		Pairs:     pairs,
		Metrics:   m,
		PollEvery: every,
		Timeout:   cfg.RequestTimeout,
		Log:       log,
	}, nil
}
