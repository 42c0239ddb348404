package indicators

import (
	"errors"
	"testing"
	"time"

	"TrendBoard/internal/domain/models"

	"github.com/shopspring/decimal"
)

func series(closes ...float64) models.CandleSeries {
	out := make(models.CandleSeries, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		out[i] = models.Candle{
			OpenTime: start.Add(time.Duration(i) * 5 * time.Minute),
			Open:     d, High: d, Low: d, Close: d,
			Volume: decimal.NewFromInt(1),
		}
	}
	return out
}

func TestComputeEmaEmptySeries(t *testing.T) {
	_, err := ComputeEma(nil, 8)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestComputeEmaInvalidPeriod(t *testing.T) {
	_, err := ComputeEma(series(1, 2, 3), 0)
	if !errors.Is(err, models.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestComputeEmaSingleSample(t *testing.T) {
	s := series(42.5)
	for _, p := range []int{1, 8, 21, 233} {
		got, err := ComputeEma(s, p)
		if err != nil {
			t.Fatalf("period %d: %v", p, err)
		}
		if !got.Equal(decimal.NewFromFloat(42.5)) {
			t.Fatalf("period %d: expected 42.5, got %s", p, got)
		}
	}
}

func TestComputeEmaKnownValues(t *testing.T) {
	// a = 2/(3+1) = 0.5: 10 -> 15 -> 22.5
	got, err := ComputeEma(series(10, 20, 30), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(decimal.NewFromFloat(22.5)) {
		t.Fatalf("expected 22.5, got %s", got)
	}

	// period 1 tracks the last close exactly
	got, err = ComputeEma(series(3, 7, 11, 5), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected 5, got %s", got)
	}
}

func TestComputeEmaDeterministic(t *testing.T) {
	s := series(1.5, 2.25, 3.125, 2.5, 4.75, 3.3, 5.1)
	first, err := ComputeEma(s, 21)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := ComputeEma(s, 21)
		if !again.Equal(first) {
			t.Fatalf("run %d: %s != %s", i, again, first)
		}
	}
}

func TestComputeEmaBoundedForIncreasingSeries(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.37
	}
	s := series(closes...)
	lo := decimal.NewFromFloat(closes[0])
	hi := decimal.NewFromFloat(closes[len(closes)-1])

	for _, p := range []int{1, 2, 8, 21, 233, 1000} {
		for n := 1; n <= len(s); n += 37 {
			got, err := ComputeEma(s[:n], p)
			if err != nil {
				t.Fatal(err)
			}
			if got.LessThan(lo) || got.GreaterThan(hi) {
				t.Fatalf("period %d n %d: ema %s outside [%s, %s]", p, n, got, lo, hi)
			}
		}
	}
}

func TestComputeEmaSet(t *testing.T) {
	closes := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		closes = append(closes, 10)
	}
	closes = append(closes, 20)
	s := series(closes...)

	set, err := ComputeEmaSet(s, models.EmaPeriods{Fast: 8, Slow: 21, Slowest: 233})
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(set))
	}
	for _, p := range []int{8, 21, 233} {
		want, _ := ComputeEma(s, p)
		if !set[p].Equal(want) {
			t.Fatalf("period %d: set %s != single %s", p, set[p], want)
		}
	}
	if !set[8].GreaterThan(set[21]) {
		t.Fatalf("expected ema8 %s > ema21 %s", set[8], set[21])
	}
}

func TestComputeEmaSetEmpty(t *testing.T) {
	_, err := ComputeEmaSet(models.CandleSeries{}, models.EmaPeriods{Fast: 8, Slow: 21, Slowest: 233})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFlatSeriesGivesEqualEmas(t *testing.T) {
	closes := make([]float64, 21)
	for i := range closes {
		closes[i] = 15
	}
	set, err := ComputeEmaSet(series(closes...), models.EmaPeriods{Fast: 8, Slow: 21, Slowest: 233})
	if err != nil {
		t.Fatal(err)
	}
	if !set[8].Equal(set[21]) {
		t.Fatalf("expected equal emas, got %s and %s", set[8], set[21])
	}
	if got := ClassifyTrend(set[8], set[21]); got != models.TrendShort {
		t.Fatalf("tie must classify as SHORT, got %s", got)
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		fast, slow float64
		want       models.Trend
	}{
		{2, 1, models.TrendLong},
		{1, 2, models.TrendShort},
		{1, 1, models.TrendShort},
		{0.00000001, 0, models.TrendLong},
	}
	for _, c := range cases {
		got := ClassifyTrend(decimal.NewFromFloat(c.fast), decimal.NewFromFloat(c.slow))
		if got != c.want {
			t.Errorf("ClassifyTrend(%v, %v) = %s, want %s", c.fast, c.slow, got, c.want)
		}
	}
}
