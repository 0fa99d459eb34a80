package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"fxconvert/internal/application"
	"fxconvert/internal/domain"
)

const help = `commands:
  <amount>        set the source amount
  target <amount> set the target amount (Pro mode converts back)
  from <CODE>     set the source currency
  to <CODE>       set the target currency
  pro on|off      toggle Pro mode
  symbols         list available currencies
  history         last 7 days for the current pair (Pro mode)
  quit`

// printer serializes output from the REPL loop and the debouncer goroutine.
type printer struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

// State prints a session state, skipping repeats.
func (p *printer) State(st application.SessionState) {
	line := fmt.Sprintf("%s %s = %s %s", st.SourceAmount, st.SourceSymbol, st.TargetAmount, st.TargetSymbol)
	if st.Pro {
		line += " [pro]"
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.w, line)
}

// Notify prints notices in place of toasts.
func (p *printer) Notify(_ context.Context, n domain.Notice) {
	p.Printf("! %s %s\n", n.Title, n.Description)
}

func runREPL(ctx context.Context, in io.Reader, out *printer, sess *application.Session) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "quit", "exit":
			return nil
		case "help", "?":
			out.Printf("%s\n", help)
		case "target":
			sess.SetTargetAmount(arg)
		case "from":
			if err := sess.SetSourceSymbol(arg); err != nil {
				out.Printf("error: %v\n", err)
			}
		case "to":
			if err := sess.SetTargetSymbol(arg); err != nil {
				out.Printf("error: %v\n", err)
			}
		case "pro":
			switch strings.ToLower(arg) {
			case "on":
				sess.SetProMode(true)
			case "off":
				sess.SetProMode(false)
			default:
				out.Printf("usage: pro on|off\n")
			}
		case "symbols":
			printSymbols(out, sess.State().Symbols)
		case "history":
			points, err := sess.Series(ctx)
			if errors.Is(err, application.ErrProModeRequired) {
				out.Printf("history is available in Pro mode\n")
				continue
			}
			for _, pt := range points {
				out.Printf("%s  %.6f\n", pt.Date, pt.Rate)
			}
		default:
			sess.SetSourceAmount(line)
		}
	}
	return sc.Err()
}

func printSymbols(out *printer, symbols domain.Symbols) {
	if len(symbols) == 0 {
		out.Printf("no symbols available\n")
		return
	}
	for _, code := range symbols.Codes() {
		out.Printf("%s  %s\n", code, symbols[code])
	}
}
