package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fxconvert/internal/domain"

	"go.uber.org/zap"
)

const (
	DefaultSourceAmount = "1.00"
	DefaultTargetAmount = "0.00"
	DefaultSourceSymbol = "EUR"
	DefaultTargetSymbol = "USD"
)

// SessionState is a snapshot of one converter screen.
type SessionState struct {
	SourceAmount string
	TargetAmount string
	SourceSymbol string
	TargetSymbol string
	Pro          bool
	Symbols      domain.Symbols
}

// Session holds the state behind a converter screen: two amounts, two
// symbols and the Pro flag. Conversions are debounced and their results are
// published through the OnChange callback.
type Session struct {
	ctx      context.Context
	conv     *Converter
	rates    *RateService
	debounce Debouncer
	log      *zap.Logger

	mu       sync.Mutex
	state    SessionState
	onChange func(SessionState)
}

type SessionOption func(*Session)

func WithDefaultPair(source, target string) SessionOption {
	return func(s *Session) {
		p := domain.NewPair(source, target)
		s.state.SourceSymbol, s.state.TargetSymbol = p.Source, p.Target
	}
}

func WithOnChange(fn func(SessionState)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// NewSession binds a session to ctx; debounced conversions run with it.
func NewSession(ctx context.Context, conv *Converter, rates *RateService, debounce Debouncer, opts ...SessionOption) *Session {
	s := &Session{
		ctx:      ctx,
		conv:     conv,
		rates:    rates,
		debounce: debounce,
		state: SessionState{
			SourceAmount: DefaultSourceAmount,
			TargetAmount: DefaultTargetAmount,
			SourceSymbol: DefaultSourceSymbol,
			TargetSymbol: DefaultTargetSymbol,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Start loads the symbol list and schedules the first conversion.
func (s *Session) Start() {
	symbols := s.rates.GetSymbols(s.ctx)
	if symbols == nil {
		symbols = domain.Symbols{}
	}
	s.mu.Lock()
	s.state.Symbols = symbols
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	s.schedule(st.SourceAmount, st.SourceSymbol, st.TargetSymbol, st.Pro, false)
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) SetSourceAmount(v string) {
	s.mu.Lock()
	s.state.SourceAmount = v
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	s.schedule(v, st.SourceSymbol, st.TargetSymbol, st.Pro, false)
}

// SetTargetAmount converts back into the source amount only in Pro mode.
func (s *Session) SetTargetAmount(v string) {
	s.mu.Lock()
	s.state.TargetAmount = v
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	if st.Pro {
		s.schedule(v, st.TargetSymbol, st.SourceSymbol, st.Pro, true)
	}
}

// SetSourceSymbol swaps the symbols when v equals the current target.
func (s *Session) SetSourceSymbol(v string) error {
	code, err := s.checkCode(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	prev := s.state.SourceSymbol
	s.state.SourceSymbol = code
	if code == s.state.TargetSymbol {
		s.state.TargetSymbol = prev
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	s.schedule(st.SourceAmount, st.SourceSymbol, st.TargetSymbol, st.Pro, false)
	return nil
}

// SetTargetSymbol swaps the symbols when v equals the current source.
func (s *Session) SetTargetSymbol(v string) error {
	code, err := s.checkCode(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	prev := s.state.TargetSymbol
	s.state.TargetSymbol = code
	if code == s.state.SourceSymbol {
		s.state.SourceSymbol = prev
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	s.schedule(st.SourceAmount, st.SourceSymbol, st.TargetSymbol, st.Pro, false)
	return nil
}

func (s *Session) SetProMode(pro bool) {
	s.mu.Lock()
	s.state.Pro = pro
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
	s.schedule(st.SourceAmount, st.SourceSymbol, st.TargetSymbol, pro, false)
}

// Series returns the week of rates for the current pair. Pro mode only.
func (s *Session) Series(ctx context.Context) ([]domain.SeriesPoint, error) {
	st := s.State()
	if !st.Pro {
		return nil, ErrProModeRequired
	}
	return s.rates.GetSeries(ctx, st.SourceSymbol, st.TargetSymbol), nil
}

// Close drops any pending conversion.
func (s *Session) Close() {
	s.debounce.Stop()
}

func (s *Session) checkCode(v string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(v))
	if !domain.ValidCode(code) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedPair, v)
	}
	s.mu.Lock()
	symbols := s.state.Symbols
	s.mu.Unlock()
	if len(symbols) > 0 {
		if _, ok := symbols[code]; !ok {
			return "", fmt.Errorf("%w: %s not in symbol list", domain.ErrUnsupportedPair, code)
		}
	}
	return code, nil
}

func (s *Session) schedule(amount, source, target string, pro, reverse bool) {
	s.debounce.Do(func() { s.convert(amount, source, target, pro, reverse) })
}

func (s *Session) convert(amount, source, target string, pro, reverse bool) {
	c, err := s.conv.Convert(s.ctx, amount, source, target, pro)
	if err != nil {
		if !errors.Is(err, ErrNothingToConvert) {
			s.log.Debug("session.convert_skipped", zap.String("amount", amount), zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	if reverse {
		s.state.SourceAmount = c.Value
	} else {
		s.state.TargetAmount = c.Value
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(st)
}

func (s *Session) snapshotLocked() SessionState {
	return s.state
}

func (s *Session) publish(st SessionState) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
