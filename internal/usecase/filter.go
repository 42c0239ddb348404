package usecase

import (
	"sort"

	"TrendBoard/internal/domain/models"
)

// FilterByPrice keeps the snapshots with min <= LastPrice <= max, preserving order.
func FilterByPrice(snaps []models.SymbolSnapshot, r models.PriceRange) []models.SymbolSnapshot {
	out := make([]models.SymbolSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if r.Contains(s.LastPrice) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByTrend keeps the snapshots with the given trend. An empty trend keeps all.
func FilterByTrend(snaps []models.SymbolSnapshot, trend models.Trend) []models.SymbolSnapshot {
	if trend == "" {
		return snaps
	}
	out := make([]models.SymbolSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.Trend == trend {
			out = append(out, s)
		}
	}
	return out
}

// SortSnapshots sorts in place by "symbol" (default), "price" (descending) or
// "trend" (LONG first). Ties fall back to the symbol.
func SortSnapshots(snaps []models.SymbolSnapshot, key string) {
	sort.SliceStable(snaps, func(i, j int) bool {
		a, b := snaps[i], snaps[j]
		switch key {
		case "price":
			if !a.LastPrice.Equal(b.LastPrice) {
				return a.LastPrice.GreaterThan(b.LastPrice)
			}
		case "trend":
			if a.Trend != b.Trend {
				return a.Trend == models.TrendLong
			}
		}
		return a.Instrument < b.Instrument
	})
}
