package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendBoard/internal/domain/repository"
	"TrendBoard/internal/handler/cli"
	"TrendBoard/internal/service/ratelimit"
	"TrendBoard/internal/usecase"
	"TrendBoard/pkg/config"
	xhttp "TrendBoard/pkg/http"
	applogger "TrendBoard/pkg/logger"
)

const (
	limiterSweepEvery = time.Minute
	limiterIdle       = 10 * time.Minute
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	screener    *usecase.ScreenerUseCase
	httpHandler xhttp.Handler
	limiter     *ratelimit.Limiter
	sink        repository.Sink
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	screener *usecase.ScreenerUseCase,
	h xhttp.Handler,
	limiter *ratelimit.Limiter,
	sink repository.Sink,
) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{
		cfg:         cfg,
		logger:      l,
		screener:    screener,
		httpHandler: h,
		limiter:     limiter,
		sink:        sink,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.logger }

// Run serves HTTP and blocks until SIGINT/SIGTERM or a listen failure.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve runs the HTTP server until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, a.logger,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("screener ready",
		applogger.String("interval", a.cfg.Screener.Interval),
		applogger.Int("workers", a.cfg.Screener.Workers),
		applogger.Int("limit", a.cfg.Screener.Limit),
	)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go a.sweepLimiter(sweepCtx, sweepDone)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
	}

	cancelSweep()
	<-sweepDone
	return errors.Join(runErr, a.shutdown())
}

// RunOnce performs a single screen and writes the colour table to w.
// A discovery failure is returned; per-instrument failures only show in
// the table footer.
func (a *App) RunOnce(ctx context.Context, q usecase.ScreenQuery, w io.Writer) error {
	defer func() {
		if err := a.closeSinks(); err != nil {
			a.logger.Warn("sink close error", applogger.Error(err))
		}
	}()

	view, err := a.screener.Screen(ctx, q)
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	return cli.RenderTable(w, view)
}

func (a *App) sweepLimiter(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	if a.limiter == nil {
		return
	}
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.logger.Debug("rate limiter swept", applogger.Int("keys", n))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if err := a.closeSinks(); err != nil {
		a.logger.Warn("sink close error", applogger.Error(err))
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeSinks() error {
	if a.sink == nil {
		return nil
	}
	return a.sink.Close()
}
