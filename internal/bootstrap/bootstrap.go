package bootstrap

import (
	"context"
	"net/http"

	"fxconvert/internal/application"
	"fxconvert/internal/config"
	httpserver "fxconvert/internal/infrastructure/http"
	"fxconvert/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Core is the object graph shared by every entry point.
type Core struct {
	Config    config.Config
	Log       *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Provider  application.RateProvider
	Cache     application.RateCache
	Rates     *application.RateService
	Converter *application.Converter
}

// cleanups runs registered funcs in reverse order.
type cleanups []func()

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func InitCore(ctx context.Context) (*Core, func(), error) {
	log := ProvideLogger()
	cfg, err := ProvideConfig()
	if err != nil {
		return nil, noop, err
	}
	return initCore(ctx, cfg, log)
}

func initCore(ctx context.Context, cfg config.Config, log *zap.Logger) (*Core, func(), error) {
	reg, m := ProvideMetrics()
	rp, err := ProvideRateProvider(cfg, m)
	if err != nil {
		return nil, noop, err
	}
	rc, closeCache, err := ProvideRateCache(ctx, log, cfg)
	if err != nil {
		return nil, noop, err
	}
	rates := ProvideRateService(rp, log)
	return &Core{
		Config:    cfg,
		Log:       log,
		Registry:  reg,
		Metrics:   m,
		Provider:  rp,
		Cache:     rc,
		Rates:     rates,
		Converter: ProvideConverter(rates, rc, m, log),
	}, closeCache, nil
}

// InitAPI builds the HTTP handler for cmd/api.
func InitAPI(ctx context.Context) (http.Handler, config.Config, func(), error) {
	log := ProvideLogger()
	cfg, err := ProvideConfig()
	if err != nil {
		return nil, config.Config{}, noop, err
	}
	h, cleanup, err := initAPI(ctx, cfg, log)
	return h, cfg, cleanup, err
}

func initAPI(ctx context.Context, cfg config.Config, log *zap.Logger) (http.Handler, func(), error) {
	var cl cleanups
	core, closeCore, err := initCore(ctx, cfg, log)
	if err != nil {
		return nil, noop, err
	}
	cl = append(cl, closeCore)

	archive, db, closeDB, err := ProvideArchive(ctx, log, cfg)
	if err != nil {
		cl.run()
		return nil, noop, err
	}
	cl = append(cl, closeDB)

	opts := []httpserver.ServerOption{
		httpserver.WithMetricsHandler(promhttp.HandlerFor(core.Registry, promhttp.HandlerOpts{})),
	}
	if archive != nil {
		opts = append(opts, httpserver.WithArchive(archive))
	}
	srv := httpserver.NewServer(core.Rates, core.Converter, opts...)
	if db != nil {
		srv.SetReadyCheck(db.Ping)
	}
	return httpserver.NewRouter(srv), cl.run, nil
}

// InitWorker builds the snapshot worker for cmd/worker.
func InitWorker(ctx context.Context) (application.Worker, func(), error) {
	log := ProvideLogger()
	cfg, err := ProvideConfig()
	if err != nil {
		return nil, noop, err
	}
	return initWorker(ctx, cfg, log)
}

func initWorker(ctx context.Context, cfg config.Config, log *zap.Logger) (application.Worker, func(), error) {
	var cl cleanups
	core, closeCore, err := initCore(ctx, cfg, log)
	if err != nil {
		return nil, noop, err
	}
	cl = append(cl, closeCore)

	archive, _, closeDB, err := ProvideArchive(ctx, log, cfg)
	if err != nil {
		cl.run()
		return nil, noop, err
	}
	cl = append(cl, closeDB)

	w, err := ProvideWorker(cfg, core.Provider, archive, core.Cache, core.Metrics, log)
	if err != nil {
		cl.run()
		return nil, noop, err
	}
	return w, cl.run, nil
}
