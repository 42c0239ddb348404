package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentID identifies a tradable instrument on the exchange (e.g. "BTCUSDT").
type InstrumentID string

func (id InstrumentID) String() string { return string(id) }

// Candle represents one fixed-interval OHLCV sample as returned by the exchange.
// Only Close feeds the indicators today; the other fields are kept so the
// gateway contract does not have to change when they are needed.
type Candle struct {
	OpenTime time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
}

// CandleSeries is ordered by OpenTime ascending; the last element is the most recent.
type CandleSeries []Candle

// Last returns the most recent candle.
func (s CandleSeries) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Closes extracts close prices in series order.
func (s CandleSeries) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}
