package domain

import "time"

const DateLayout = "2006-01-02"

// SeriesDays is the length of the history window, today included.
const SeriesDays = 7

type SeriesPoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// SeriesDates returns the SeriesDays calendar dates ending at now, oldest first.
func SeriesDates(now time.Time) []string {
	now = now.UTC()
	out := make([]string, 0, SeriesDays)
	for i := SeriesDays - 1; i >= 0; i-- {
		out = append(out, now.AddDate(0, 0, -i).Format(DateLayout))
	}
	return out
}
