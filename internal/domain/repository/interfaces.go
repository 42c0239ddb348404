package repository

import (
	"context"

	"TrendBoard/internal/domain/models"
)

// Gateway is the exchange boundary. Implementations must be safe for
// concurrent use by every aggregator worker.
type Gateway interface {
	ListActiveInstruments(ctx context.Context) ([]models.InstrumentID, error)
	FetchCandles(ctx context.Context, instrument models.InstrumentID, interval Interval, limit int) (models.CandleSeries, error)
}

// Sink persists a computed run. A failed Save never invalidates the result.
type Sink interface {
	Name() string
	Save(ctx context.Context, res *models.AggregateResult) error
	Close() error
}

// LatestReader returns the most recently persisted run, if the sink keeps one.
type LatestReader interface {
	Latest(ctx context.Context) (*models.AggregateResult, error)
}

type Metrics interface {
	RecordFetch(result string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordInFlight(delta float64)
}
