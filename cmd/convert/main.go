package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fxconvert/internal/application"
	"fxconvert/internal/bootstrap"
	"fxconvert/internal/infrastructure/debounce"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	pro := flag.Bool("pro", false, "start in Pro mode (6 decimals, reverse conversion, history)")
	from := flag.String("from", "", "source currency (default DEFAULT_SOURCE)")
	to := flag.String("to", "", "target currency (default DEFAULT_TARGET)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, cleanup, err := bootstrap.InitCore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "convert:", err)
		os.Exit(1)
	}
	defer cleanup()

	source, target := core.Config.DefaultSource, core.Config.DefaultTarget
	if *from != "" {
		source = *from
	}
	if *to != "" {
		target = *to
	}

	out := newPrinter(os.Stdout)
	rates := application.NewRateService(core.Provider,
		application.WithLogger(core.Log),
		application.WithNotifier(out),
	)
	conv := application.NewConverter(rates, core.Cache,
		application.WithObserver(core.Metrics),
		application.WithConverterLogger(core.Log),
	)
	sess := application.NewSession(ctx, conv, rates, debounce.New(core.Config.Debounce),
		application.WithDefaultPair(source, target),
		application.WithOnChange(out.State),
		application.WithSessionLogger(core.Log),
	)
	defer sess.Close()

	if *pro {
		sess.SetProMode(true)
	}
	sess.Start()

	if err := runREPL(ctx, os.Stdin, out, sess); err != nil {
		core.Log.Error("repl", zap.Error(err))
		os.Exit(1)
	}
}
