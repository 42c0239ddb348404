package indicators

import (
	"fmt"

	"TrendBoard/internal/domain/models"

	"github.com/shopspring/decimal"
)

// emaScale is the number of fractional digits kept after every EMA step.
// Every period uses the same scale so fast/slow comparisons are exact.
const emaScale = 16

var two = decimal.NewFromInt(2)

// Alpha returns the smoothing factor 2/(period+1).
func Alpha(period int) decimal.Decimal {
	return two.Div(decimal.NewFromInt(int64(period) + 1))
}

// ComputeEma computes the EMA of the close prices seeded with the first close:
// ema[0] = close[0], ema[i] = a*close[i] + (1-a)*ema[i-1]. It returns ema[last].
func ComputeEma(series models.CandleSeries, period int) (decimal.Decimal, error) {
	if period < 1 {
		return decimal.Zero, fmt.Errorf("period %d: %w", period, models.ErrInvalidPeriod)
	}
	if len(series) == 0 {
		return decimal.Zero, models.ErrInsufficientData
	}
	return emaOf(series.Closes(), period), nil
}

func emaOf(closes []decimal.Decimal, period int) decimal.Decimal {
	a := Alpha(period)
	keep := decimal.NewFromInt(1).Sub(a)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = a.Mul(c).Add(keep.Mul(ema)).Round(emaScale)
	}
	return ema
}

// ComputeEmaSet computes one EMA per period over the same series.
func ComputeEmaSet(series models.CandleSeries, periods models.EmaPeriods) (models.EmaSet, error) {
	if len(series) == 0 {
		return nil, models.ErrInsufficientData
	}
	closes := series.Closes()
	set := make(models.EmaSet, 3)
	for _, p := range periods.List() {
		if p < 1 {
			return nil, fmt.Errorf("period %d: %w", p, models.ErrInvalidPeriod)
		}
		if _, ok := set[p]; ok {
			continue
		}
		set[p] = emaOf(closes, p)
	}
	return set, nil
}

// ClassifyTrend returns LONG only when fast is strictly above slow.
// Equal values resolve to SHORT.
func ClassifyTrend(fast, slow decimal.Decimal) models.Trend {
	if fast.GreaterThan(slow) {
		return models.TrendLong
	}
	return models.TrendShort
}
