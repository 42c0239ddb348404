package server

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"TrendBoard/internal/domain/models"
	"TrendBoard/internal/domain/repository"
	"TrendBoard/internal/service/ratelimit"
	"TrendBoard/internal/usecase"
	"TrendBoard/pkg/config"
	applogger "TrendBoard/pkg/logger"

	"github.com/shopspring/decimal"
)

type stubGateway struct {
	listErr error
	closes  map[models.InstrumentID][]string
}

func (g *stubGateway) ListActiveInstruments(context.Context) ([]models.InstrumentID, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]models.InstrumentID, 0, len(g.closes))
	for id := range g.closes {
		out = append(out, id)
	}
	return out, nil
}

func (g *stubGateway) FetchCandles(_ context.Context, id models.InstrumentID, _ repository.Interval, _ int) (models.CandleSeries, error) {
	closes, ok := g.closes[id]
	if !ok {
		return nil, &models.GatewayError{Op: "klines", Instrument: id}
	}
	series := make(models.CandleSeries, len(closes))
	for i, c := range closes {
		series[i] = models.Candle{Close: decimal.RequireFromString(c)}
	}
	return series, nil
}

type closingSink struct{ closed int }

func (s *closingSink) Name() string { return "stub" }

func (s *closingSink) Save(context.Context, *models.AggregateResult) error { return nil }

func (s *closingSink) Close() error {
	s.closed++
	return nil
}

func newApp(gw repository.Gateway, sink repository.Sink) *App {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Metrics.Enabled = false

	l := applogger.NewNop()
	fetcher := usecase.NewSnapshotFetcher(gw, usecase.FetchConfig{Periods: cfg.Screener.Ema})
	agg := usecase.NewAggregator(fetcher, 4, nil, l)
	uc := usecase.NewScreenerUseCase(gw, agg, repository.Interval5m, nil, l)
	return New(cfg, l, uc, nil, ratelimit.New(), sink)
}

func TestRunOnceRendersTable(t *testing.T) {
	gw := &stubGateway{closes: map[models.InstrumentID][]string{
		"AAA": {"1", "2", "3", "4", "5"},
		"BBB": {"5", "4", "3", "2", "1"},
	}}
	sink := &closingSink{}
	app := newApp(gw, sink)

	var buf bytes.Buffer
	q := usecase.ParseScreenRequest(models.ScreenRequest{Sort: "symbol"})
	if err := app.RunOnce(context.Background(), q, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "AAA") || !strings.Contains(out, "LONG") || !strings.Contains(out, "SHORT") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if sink.closed != 1 {
		t.Fatalf("expected sinks closed after one-shot run")
	}
}

func TestRunOnceDiscoveryFailure(t *testing.T) {
	boom := errors.New("exchange down")
	app := newApp(&stubGateway{listErr: boom}, nil)

	var buf bytes.Buffer
	err := app.RunOnce(context.Background(), usecase.ScreenQuery{}, &buf)
	if !errors.Is(err, boom) {
		t.Fatalf("expected discovery error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be rendered on discovery failure")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	sink := &closingSink{}
	app := newApp(&stubGateway{}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if sink.closed != 1 {
		t.Fatalf("expected sinks closed on shutdown")
	}
}
