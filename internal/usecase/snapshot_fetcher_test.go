package usecase

import (
	"context"
	"errors"
	"testing"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"

	"github.com/shopspring/decimal"
)

func TestSnapshotFetcherLong(t *testing.T) {
	gw := &fakeGateway{closes: map[models.InstrumentID][]float64{
		"AAA": append(repeat(10, 20), 20),
	}}
	f := NewSnapshotFetcher(gw, FetchConfig{Interval: domrepo.Interval5m, Limit: 1000, Periods: defaultPeriods})

	snap, err := f.Fetch(context.Background(), "AAA")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Instrument != "AAA" {
		t.Fatalf("unexpected instrument %s", snap.Instrument)
	}
	if !snap.LastPrice.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected last price 20, got %s", snap.LastPrice)
	}
	if snap.Trend != models.TrendLong || snap.Condition != "green" {
		t.Fatalf("expected LONG/green, got %s/%s", snap.Trend, snap.Condition)
	}
	if !snap.EmaFast.GreaterThan(snap.EmaSlow) || !snap.EmaSlow.GreaterThan(snap.EmaSlowest) {
		t.Fatalf("expected ema8 > ema21 > ema233, got %s %s %s", snap.EmaFast, snap.EmaSlow, snap.EmaSlowest)
	}
	if gw.lastLimit != 1000 || gw.lastIv != domrepo.Interval5m {
		t.Fatalf("gateway called with limit=%d interval=%s", gw.lastLimit, gw.lastIv)
	}
}

func TestSnapshotFetcherTieIsShort(t *testing.T) {
	gw := &fakeGateway{closes: map[models.InstrumentID][]float64{"BBB": repeat(15, 21)}}
	f := NewSnapshotFetcher(gw, FetchConfig{Periods: defaultPeriods})

	snap, err := f.Fetch(context.Background(), "BBB")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.EmaFast.Equal(snap.EmaSlow) {
		t.Fatalf("expected equal emas, got %s %s", snap.EmaFast, snap.EmaSlow)
	}
	if snap.Trend != models.TrendShort || snap.Condition != "red" {
		t.Fatalf("expected SHORT/red, got %s/%s", snap.Trend, snap.Condition)
	}
}

func TestSnapshotFetcherDefaults(t *testing.T) {
	f := NewSnapshotFetcher(&fakeGateway{}, FetchConfig{Periods: defaultPeriods})
	cfg := f.Config()
	if cfg.Limit != 1000 || cfg.Interval != domrepo.Interval5m {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestSnapshotFetcherErrors(t *testing.T) {
	gw := &fakeGateway{
		closes: map[models.InstrumentID][]float64{"EMPTY": {}},
		fail:   map[models.InstrumentID]bool{"DOWN": true},
	}
	f := NewSnapshotFetcher(gw, FetchConfig{Periods: defaultPeriods})

	_, err := f.Fetch(context.Background(), "DOWN")
	if !errors.Is(err, models.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	var gwErr *models.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Status != 429 {
		t.Fatalf("expected wrapped *GatewayError with status 429, got %v", err)
	}

	_, err = f.Fetch(context.Background(), "EMPTY")
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestSnapshotFetcherInvalidPeriod(t *testing.T) {
	gw := &fakeGateway{closes: map[models.InstrumentID][]float64{"AAA": {1, 2, 3}}}
	f := NewSnapshotFetcher(gw, FetchConfig{Periods: models.EmaPeriods{Fast: 0, Slow: 21, Slowest: 233}})
	if _, err := f.Fetch(context.Background(), "AAA"); !errors.Is(err, models.ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}
