package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
	applogger "TrendBoard/pkg/logger"
)

// Fetcher produces a snapshot for one instrument.
type Fetcher interface {
	Fetch(ctx context.Context, instrument models.InstrumentID) (models.SymbolSnapshot, error)
}

// Outcome is the result of one fetch task: exactly one of Snapshot or Err is set.
type Outcome struct {
	Instrument models.InstrumentID
	Snapshot   models.SymbolSnapshot
	Err        error
}

// Aggregator fans Fetcher calls out over a fixed number of workers.
type Aggregator struct {
	fetcher    Fetcher
	maxWorkers int
	metrics    domrepo.Metrics
	logger     *applogger.Logger
}

func NewAggregator(fetcher Fetcher, maxWorkers int, metrics domrepo.Metrics, l *applogger.Logger) *Aggregator {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Aggregator{fetcher: fetcher, maxWorkers: maxWorkers, metrics: metrics, logger: l}
}

// MaxWorkers returns the worker pool size.
func (a *Aggregator) MaxWorkers() int { return a.maxWorkers }

// Aggregate attempts every instrument once and blocks until all of them have
// settled. Failed instruments are reported in Failures, never in Snapshots.
// Snapshots are sorted by instrument id.
func (a *Aggregator) Aggregate(ctx context.Context, instruments []models.InstrumentID) models.AggregateResult {
	outcomes := a.run(ctx, instruments)

	res := models.AggregateResult{
		GeneratedAt: time.Now().UTC(),
		Requested:   len(instruments),
		Snapshots:   make([]models.SymbolSnapshot, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		if o.Err != nil {
			res.Failures = append(res.Failures, models.Failure{Instrument: o.Instrument, Reason: o.Err.Error()})
			continue
		}
		res.Snapshots = append(res.Snapshots, o.Snapshot)
	}

	sort.Slice(res.Snapshots, func(i, j int) bool {
		return res.Snapshots[i].Instrument < res.Snapshots[j].Instrument
	})
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Instrument < res.Failures[j].Instrument
	})
	return res
}

func (a *Aggregator) run(ctx context.Context, instruments []models.InstrumentID) []Outcome {
	if len(instruments) == 0 {
		return nil
	}

	workers := a.maxWorkers
	if workers > len(instruments) {
		workers = len(instruments)
	}

	jobs := make(chan models.InstrumentID, len(instruments))
	for _, id := range instruments {
		jobs <- id
	}
	close(jobs)

	results := make(chan Outcome, len(instruments))
	for i := 0; i < workers; i++ {
		go a.worker(ctx, jobs, results)
	}

	outcomes := make([]Outcome, 0, len(instruments))
	for range instruments {
		outcomes = append(outcomes, <-results)
	}
	return outcomes
}

func (a *Aggregator) worker(ctx context.Context, jobs <-chan models.InstrumentID, results chan<- Outcome) {
	for id := range jobs {
		results <- a.attempt(ctx, id)
	}
}

// attempt runs one fetch and converts errors and panics into an Outcome.
func (a *Aggregator) attempt(ctx context.Context, id models.InstrumentID) (out Outcome) {
	out.Instrument = id
	start := time.Now()

	a.inFlight(1)
	defer func() {
		a.inFlight(-1)
		if r := recover(); r != nil {
			out.Snapshot = models.SymbolSnapshot{}
			out.Err = fmt.Errorf("fetch %s panicked: %v", id, r)
		}
		a.observe(out, time.Since(start))
	}()

	snap, err := a.fetcher.Fetch(ctx, id)
	if err != nil {
		out.Err = err
		return out
	}
	out.Snapshot = snap
	return out
}

func (a *Aggregator) inFlight(delta float64) {
	if a.metrics != nil {
		a.metrics.RecordInFlight(delta)
	}
}

func (a *Aggregator) observe(o Outcome, took time.Duration) {
	if o.Err != nil {
		a.logger.Warn("snapshot fetch failed",
			applogger.String("symbol", o.Instrument.String()),
			applogger.Duration("duration_ms", took),
			applogger.Error(o.Err),
		)
	}
	if a.metrics == nil {
		return
	}
	a.metrics.RecordLatency("snapshot_fetch", took.Seconds())
	if o.Err != nil {
		a.metrics.RecordFetch("error")
		a.metrics.RecordError(errorKind(o.Err))
		return
	}
	a.metrics.RecordFetch("ok")
	a.metrics.RecordLastPrice(o.Instrument.String(), o.Snapshot.LastPrice.InexactFloat64())
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrGateway):
		return "gateway"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrInvalidPeriod):
		return "invalid_period"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "fetch"
	}
}
