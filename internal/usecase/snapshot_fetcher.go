package usecase

import (
	"context"
	"fmt"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
	"TrendBoard/internal/services/indicators"
)

// FetchConfig controls what the fetcher asks the gateway for.
type FetchConfig struct {
	Interval domrepo.Interval
	Limit    int
	Periods  models.EmaPeriods
}

// SnapshotFetcher turns one instrument into a SymbolSnapshot.
type SnapshotFetcher struct {
	gw  domrepo.Gateway
	cfg FetchConfig
}

func NewSnapshotFetcher(gw domrepo.Gateway, cfg FetchConfig) *SnapshotFetcher {
	if cfg.Limit <= 0 {
		cfg.Limit = 1000
	}
	if cfg.Interval == "" {
		cfg.Interval = domrepo.DefaultInterval()
	}
	return &SnapshotFetcher{gw: gw, cfg: cfg}
}

// Config returns the fetch configuration in use.
func (f *SnapshotFetcher) Config() FetchConfig { return f.cfg }

// Fetch runs candles -> indicators -> classification for one instrument.
// Any failure leaves no snapshot behind.
func (f *SnapshotFetcher) Fetch(ctx context.Context, instrument models.InstrumentID) (models.SymbolSnapshot, error) {
	series, err := f.gw.FetchCandles(ctx, instrument, f.cfg.Interval, f.cfg.Limit)
	if err != nil {
		return models.SymbolSnapshot{}, fmt.Errorf("fetch candles %s: %w", instrument, err)
	}
	last, ok := series.Last()
	if !ok {
		return models.SymbolSnapshot{}, fmt.Errorf("candles %s: %w", instrument, models.ErrInsufficientData)
	}

	emas, err := indicators.ComputeEmaSet(series, f.cfg.Periods)
	if err != nil {
		return models.SymbolSnapshot{}, fmt.Errorf("ema %s: %w", instrument, err)
	}

	fast, slow := emas[f.cfg.Periods.Fast], emas[f.cfg.Periods.Slow]
	trend := indicators.ClassifyTrend(fast, slow)

	return models.SymbolSnapshot{
		Instrument: instrument,
		LastPrice:  last.Close,
		EmaFast:    fast,
		EmaSlow:    slow,
		EmaSlowest: emas[f.cfg.Periods.Slowest],
		Trend:      trend,
		Condition:  trend.Condition(),
	}, nil
}
