package usecase

import (
	"reflect"
	"testing"

	"TrendBoard/internal/domain/models"

	"github.com/shopspring/decimal"
)

func snap(id string, price float64, trend models.Trend) models.SymbolSnapshot {
	return models.SymbolSnapshot{Instrument: models.InstrumentID(id), LastPrice: decimal.NewFromFloat(price), Trend: trend}
}

func ids(snaps []models.SymbolSnapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = string(s.Instrument)
	}
	return out
}

func sample() []models.SymbolSnapshot {
	return []models.SymbolSnapshot{
		snap("AAA", 20, models.TrendLong),
		snap("BBB", 15, models.TrendShort),
		snap("CCC", 16, models.TrendShort),
		snap("DDD", 25, models.TrendLong),
		snap("EEE", 25.01, models.TrendShort),
		snap("FFF", 0.0001, models.TrendLong),
	}
}

func TestFilterByPriceIdentity(t *testing.T) {
	in := sample()
	got := FilterByPrice(in, models.PriceRange{})
	if !reflect.DeepEqual(ids(got), ids(in)) {
		t.Fatalf("default range must keep everything, got %v", ids(got))
	}
}

func TestFilterByPriceInclusiveBounds(t *testing.T) {
	r := models.PriceRange{
		Min: decimal.NewFromInt(16),
		Max: decimal.NewNullDecimal(decimal.NewFromInt(25)),
	}
	got := ids(FilterByPrice(sample(), r))
	want := []string{"AAA", "CCC", "DDD"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFilterByPriceMatchesPredicate(t *testing.T) {
	in := sample()
	ranges := []models.PriceRange{
		{Min: decimal.NewFromInt(0)},
		{Min: decimal.NewFromInt(18)},
		{Max: decimal.NewNullDecimal(decimal.NewFromInt(15))},
		{Min: decimal.NewFromInt(30), Max: decimal.NewNullDecimal(decimal.NewFromInt(10))},
	}
	for _, r := range ranges {
		got := FilterByPrice(in, r)
		want := 0
		for _, s := range in {
			if s.LastPrice.GreaterThanOrEqual(r.Min) && (!r.Max.Valid || s.LastPrice.LessThanOrEqual(r.Max.Decimal)) {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("range %+v: expected %d rows, got %d", r, want, len(got))
		}
		for _, s := range got {
			if !r.Contains(s.LastPrice) {
				t.Fatalf("range %+v: %s should have been filtered", r, s.Instrument)
			}
		}
	}
}

func TestFilterByTrend(t *testing.T) {
	got := ids(FilterByTrend(sample(), models.TrendLong))
	want := []string{"AAA", "DDD", "FFF"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(FilterByTrend(sample(), "")) != len(sample()) {
		t.Fatalf("empty trend must keep everything")
	}
}

func TestSortSnapshots(t *testing.T) {
	s := sample()
	SortSnapshots(s, "price")
	if got := ids(s); !reflect.DeepEqual(got, []string{"EEE", "DDD", "AAA", "CCC", "BBB", "FFF"}) {
		t.Fatalf("price sort: %v", got)
	}
	SortSnapshots(s, "trend")
	if got := ids(s); !reflect.DeepEqual(got, []string{"AAA", "DDD", "FFF", "BBB", "CCC", "EEE"}) {
		t.Fatalf("trend sort: %v", got)
	}
	SortSnapshots(s, "")
	if got := ids(s); !reflect.DeepEqual(got, []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"}) {
		t.Fatalf("symbol sort: %v", got)
	}
}
