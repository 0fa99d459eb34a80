package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	// Common
	Env      string `env:"ENV" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	// API
	Port string `env:"PORT" env-default:"8080"`
	// Provider
	Provider        string        `env:"PROVIDER" env-default:"fake"`
	ExchangeAPIBase string        `env:"EXCHANGE_API_BASE" env-default:"http://api.exchangeratesapi.io"`
	ExchangeAPIKey  string        `env:"EXCHANGE_API_KEY"`
	SeriesMode      string        `env:"SERIES_MODE" env-default:"historical"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"4s"`
	HTTPRetries     uint64        `env:"HTTP_RETRIES" env-default:"0"`
	ProviderRPS     float64       `env:"PROVIDER_RPS" env-default:"0"`
	// Converter
	Debounce      time.Duration `env:"DEBOUNCE" env-default:"400ms"`
	DefaultSource string        `env:"DEFAULT_SOURCE" env-default:"EUR"`
	DefaultTarget string        `env:"DEFAULT_TARGET" env-default:"USD"`
	// Cache
	CacheBackend string        `env:"CACHE_BACKEND" env-default:"memory"`
	CacheTTL     time.Duration `env:"CACHE_TTL" env-default:"0s"`
	// Redis (shared cache)
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	// Archive
	Storage     string `env:"STORAGE" env-default:"none"`
	DatabaseURL string `env:"DATABASE_URL"`
	// Worker
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" env-default:"1m"`
	WatchPairs       []string      `env:"WATCH_PAIRS" env-separator:"," env-default:"EUR/USD"`
}

// Load reads environment variables and applies defaults.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load for process entry points.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
