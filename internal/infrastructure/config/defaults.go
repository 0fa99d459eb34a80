package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 4 * time.Second
	DefaultSnapshotEvery   = time.Minute
	DefaultArchiveLimit    = 50
	MaxArchiveLimit        = 500
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
	RedisKeyPrefix         = "fx:rate:"
)
