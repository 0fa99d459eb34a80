package domain

import "time"

type RateSnapshot struct {
	ID         int64
	Pair       Pair
	Rate       float64
	ObservedAt time.Time
	Origin     string
}
