package application

import (
	"context"
	"sync"

	"fxconvert/internal/domain"

	"go.uber.org/zap"
)

// LogNotifier writes notices to the structured log.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, notice domain.Notice) {
	log := n.Log
	if log == nil {
		return
	}
	log.Warn("notice",
		zap.String("title", notice.Title),
		zap.String("description", notice.Description),
		zap.String("status", string(notice.Status)),
	)
}

// NoticeCollector gathers the notices raised while serving one request.
type NoticeCollector struct {
	mu      sync.Mutex
	notices []domain.Notice
}

type collectorKey struct{}

func WithNoticeCollector(ctx context.Context) (context.Context, *NoticeCollector) {
	c := &NoticeCollector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func collectorFrom(ctx context.Context) *NoticeCollector {
	c, _ := ctx.Value(collectorKey{}).(*NoticeCollector)
	return c
}

func (c *NoticeCollector) add(n domain.Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
}

// Notices never returns nil so it encodes as an empty JSON array.
func (c *NoticeCollector) Notices() []domain.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

func symbolsNotice() domain.Notice {
	return domain.Notice{
		Title:       "Symbol list error.",
		Description: "There was an issue getting the available symbols list",
		Status:      domain.NoticeError,
		Duration:    domain.NoticeDuration,
	}
}

func rateNotice(p domain.Pair) domain.Notice {
	return domain.Notice{
		Title:       "Conversion rate error.",
		Description: "There was an issue getting the conversion rate for " + p.Key() + ".",
		Status:      domain.NoticeError,
		Duration:    domain.NoticeDuration,
	}
}

func seriesNotice(p domain.Pair) domain.Notice {
	return domain.Notice{
		Title:       "Historical data error.",
		Description: "There was an issue collecting the historical data for " + p.Key() + ".",
		Status:      domain.NoticeError,
		Duration:    domain.NoticeDuration,
	}
}
