package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend is the mode derived from comparing the fast and slow EMA.
type Trend string

const (
	TrendLong  Trend = "LONG"
	TrendShort Trend = "SHORT"
)

// Condition returns the colour class used by the presentation layers.
func (t Trend) Condition() string {
	if t == TrendLong {
		return "green"
	}
	return "red"
}

// EmaPeriods names the three EMA periods computed per instrument.
type EmaPeriods struct {
	Fast    int `yaml:"fast" json:"fast" default:"8"`
	Slow    int `yaml:"slow" json:"slow" default:"21"`
	Slowest int `yaml:"slowest" json:"slowest" default:"233"`
}

// List returns the periods in fast, slow, slowest order.
func (p EmaPeriods) List() []int { return []int{p.Fast, p.Slow, p.Slowest} }

// EmaSet maps a period to its EMA value over one candle series.
type EmaSet map[int]decimal.Decimal

// SymbolSnapshot is the per-instrument unit of aggregation. A snapshot only
// exists when every step for the instrument succeeded.
type SymbolSnapshot struct {
	Instrument InstrumentID    `json:"symbol"`
	LastPrice  decimal.Decimal `json:"last_price"`
	EmaFast    decimal.Decimal `json:"ema_fast"`
	EmaSlow    decimal.Decimal `json:"ema_slow"`
	EmaSlowest decimal.Decimal `json:"ema_slowest"`
	Trend      Trend           `json:"trend"`
	Condition  string          `json:"condition"`
}

// Failure records why an instrument is absent from a result.
type Failure struct {
	Instrument InstrumentID `json:"symbol"`
	Reason     string       `json:"reason"`
}

// AggregateResult is the outcome of one fan-out run over the discovered instruments.
type AggregateResult struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Interval    string           `json:"interval"`
	Requested   int              `json:"requested"`
	Snapshots   []SymbolSnapshot `json:"snapshots"`
	Failures    []Failure        `json:"failures,omitempty"`
}

// Succeeded returns the number of snapshots in the result.
func (r *AggregateResult) Succeeded() int { return len(r.Snapshots) }

// Failed returns the number of instruments that produced no snapshot.
func (r *AggregateResult) Failed() int { return len(r.Failures) }

// PriceRange is an inclusive filter on LastPrice. An invalid Max means unbounded.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.NullDecimal
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	if r.Max.Valid && price.GreaterThan(r.Max.Decimal) {
		return false
	}
	return true
}

// IsUnbounded reports whether the range admits every non-negative price.
func (r PriceRange) IsUnbounded() bool {
	return r.Min.IsZero() && !r.Max.Valid
}
