package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fxconvert/internal/application"
	"fxconvert/internal/domain"
	infraconfig "fxconvert/internal/infrastructure/config"
	"fxconvert/internal/infrastructure/logx"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

type Server struct {
	rates   *application.RateService
	conv    *application.Converter
	archive application.RateArchive
	ping    func(ctx context.Context) error
	metrics http.Handler
}

type ServerOption func(*Server)

// WithArchive enables the archive route. Without it the route answers 404.
func WithArchive(a application.RateArchive) ServerOption {
	return func(s *Server) { s.archive = a }
}

func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.metrics = h }
}

func NewServer(rates *application.RateService, conv *application.Converter, opts ...ServerOption) *Server {
	s := &Server{rates: rates, conv: conv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type symbolsResponse struct {
	Symbols domain.Symbols  `json:"symbols"`
	Notices []domain.Notice `json:"notices"`
}

type rateResponse struct {
	Base    string          `json:"base"`
	Target  string          `json:"target"`
	Rate    float64         `json:"rate"`
	Notices []domain.Notice `json:"notices"`
}

type seriesResponse struct {
	Base    string               `json:"base"`
	Target  string               `json:"target"`
	Points  []domain.SeriesPoint `json:"points"`
	Notices []domain.Notice      `json:"notices"`
}

type conversionResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    float64         `json:"amount"`
	Rate      float64         `json:"rate"`
	Value     string          `json:"value"`
	Precision int32           `json:"precision"`
	Pro       bool            `json:"pro"`
	Reverse   bool            `json:"reverse"`
	Notices   []domain.Notice `json:"notices"`
}

type snapshotDTO struct {
	Rate       float64   `json:"rate"`
	ObservedAt time.Time `json:"observed_at"`
	Origin     string    `json:"origin"`
}

type archiveResponse struct {
	Base      string        `json:"base"`
	Target    string        `json:"target"`
	Snapshots []snapshotDTO `json:"snapshots"`
}

func (s *Server) GetSymbols(w http.ResponseWriter, r *http.Request) {
	ctx, col := application.WithNoticeCollector(r.Context())
	symbols := s.rates.GetSymbols(ctx)
	writeJSON(w, http.StatusOK, symbolsResponse{Symbols: symbols, Notices: col.Notices()})
}

func (s *Server) GetLatestRate(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	ctx, col := application.WithNoticeCollector(r.Context())
	rate := s.rates.GetRate(ctx, pair.Source, pair.Target)
	writeJSON(w, http.StatusOK, rateResponse{Base: pair.Source, Target: pair.Target, Rate: rate, Notices: col.Notices()})
}

func (s *Server) GetSeries(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	ctx, col := application.WithNoticeCollector(r.Context())
	points := s.rates.GetSeries(ctx, pair.Source, pair.Target)
	writeJSON(w, http.StatusOK, seriesResponse{Base: pair.Source, Target: pair.Target, Points: points, Notices: col.Notices()})
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		amount, from, to string
		pro, reverse     bool
	)
	if err := bindAll(q,
		param{"amount", true, &amount},
		param{"from", true, &from},
		param{"to", true, &to},
		param{"pro", false, &pro},
		param{"reverse", false, &reverse},
	); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pair := domain.NewPair(from, to)
	if err := pair.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if reverse {
		pair = pair.Reversed()
	}

	ctx, col := application.WithNoticeCollector(r.Context())
	c, err := s.conv.Convert(ctx, amount, pair.Source, pair.Target, pro)
	switch {
	case errors.Is(err, application.ErrNothingToConvert), errors.Is(err, application.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logx.WithFields(r.Context()).Error("convert_failed", zap.Error(err))
		internalError(w)
		return
	}
	c.Reverse = reverse
	writeJSON(w, http.StatusOK, conversionResponse{
		From:      c.Pair.Source,
		To:        c.Pair.Target,
		Amount:    c.Amount,
		Rate:      c.Rate,
		Value:     c.Value,
		Precision: c.Precision,
		Pro:       pro,
		Reverse:   c.Reverse,
		Notices:   col.Notices(),
	})
}

func (s *Server) GetArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, application.ErrStorageDisabled.Error())
		return
	}
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	limit := infraconfig.DefaultArchiveLimit
	if err := bindAll(r.URL.Query(), param{"limit", false, &limit}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 || limit > infraconfig.MaxArchiveLimit {
		writeError(w, http.StatusBadRequest, "limit out of range")
		return
	}
	snaps, err := s.archive.Recent(r.Context(), pair, limit)
	if err != nil {
		logx.WithFields(r.Context()).Error("archive_read_failed", zap.Error(err))
		internalError(w)
		return
	}
	resp := archiveResponse{Base: pair.Source, Target: pair.Target, Snapshots: make([]snapshotDTO, 0, len(snaps))}
	for _, sn := range snaps {
		resp.Snapshots = append(resp.Snapshots, snapshotDTO{Rate: sn.Rate, ObservedAt: sn.ObservedAt, Origin: sn.Origin})
	}
	writeJSON(w, http.StatusOK, resp)
}

type param struct {
	name     string
	required bool
	dest     any
}

func bindAll(q map[string][]string, params ...param) error {
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, p.required, p.name, q, p.dest); err != nil {
			return err
		}
	}
	return nil
}

// bindPair reads the base and symbols query parameters.
func bindPair(w http.ResponseWriter, r *http.Request) (domain.Pair, bool) {
	var base, symbols string
	if err := bindAll(r.URL.Query(),
		param{"base", true, &base},
		param{"symbols", true, &symbols},
	); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Pair{}, false
	}
	pair := domain.NewPair(base, symbols)
	if err := pair.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Pair{}, false
	}
	return pair, true
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
