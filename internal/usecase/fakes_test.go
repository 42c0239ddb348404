package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"

	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

type fakeGateway struct {
	instruments []models.InstrumentID
	closes      map[models.InstrumentID][]float64
	fail        map[models.InstrumentID]bool
	panicOn     map[models.InstrumentID]bool
	listErr     error
	delay       time.Duration

	calls    int64
	inFlight int64
	maxSeen  int64

	mu        sync.Mutex
	lastLimit int
	lastIv    domrepo.Interval
}

func (g *fakeGateway) ListActiveInstruments(ctx context.Context) ([]models.InstrumentID, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.instruments, nil
}

func (g *fakeGateway) FetchCandles(ctx context.Context, id models.InstrumentID, iv domrepo.Interval, limit int) (models.CandleSeries, error) {
	atomic.AddInt64(&g.calls, 1)
	n := atomic.AddInt64(&g.inFlight, 1)
	defer atomic.AddInt64(&g.inFlight, -1)
	for {
		m := atomic.LoadInt64(&g.maxSeen)
		if n <= m || atomic.CompareAndSwapInt64(&g.maxSeen, m, n) {
			break
		}
	}

	g.mu.Lock()
	g.lastLimit, g.lastIv = limit, iv
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.panicOn[id] {
		panic("exchange client exploded")
	}
	if g.fail[id] {
		return nil, &models.GatewayError{Op: "klines", Instrument: id, Status: 429, Err: errBoom}
	}
	closes, ok := g.closes[id]
	if !ok {
		return nil, fmt.Errorf("unknown instrument %s: %w", id, models.ErrGateway)
	}
	return candles(closes...), nil
}

func candles(closes ...float64) models.CandleSeries {
	out := make(models.CandleSeries, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		out[i] = models.Candle{OpenTime: start.Add(time.Duration(i) * time.Minute), Open: d, High: d, Low: d, Close: d, Volume: decimal.NewFromInt(10)}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func instrumentsN(n int) ([]models.InstrumentID, map[models.InstrumentID][]float64) {
	ids := make([]models.InstrumentID, n)
	closes := make(map[models.InstrumentID][]float64, n)
	for i := 0; i < n; i++ {
		id := models.InstrumentID(fmt.Sprintf("SYM%03d", i))
		ids[i] = id
		closes[id] = []float64{float64(i + 1), float64(i + 2), float64(i + 3)}
	}
	return ids, closes
}

type memMetrics struct {
	mu       sync.Mutex
	fetch    map[string]int
	errs     map[string]int
	prices   map[string]float64
	inFlight float64
}

func newMemMetrics() *memMetrics {
	return &memMetrics{fetch: map[string]int{}, errs: map[string]int{}, prices: map[string]float64{}}
}

func (m *memMetrics) RecordFetch(result string) {
	m.mu.Lock()
	m.fetch[result]++
	m.mu.Unlock()
}

func (m *memMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs[kind]++
	m.mu.Unlock()
}

func (m *memMetrics) RecordLastPrice(symbol string, price float64) {
	m.mu.Lock()
	m.prices[symbol] = price
	m.mu.Unlock()
}

func (m *memMetrics) RecordLatency(string, float64) {}

func (m *memMetrics) RecordInFlight(delta float64) {
	m.mu.Lock()
	m.inFlight += delta
	m.mu.Unlock()
}

type memSink struct {
	mu    sync.Mutex
	saved []*models.AggregateResult
	err   error
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Save(_ context.Context, res *models.AggregateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return &models.PersistenceError{Sink: "mem", Err: s.err}
	}
	s.saved = append(s.saved, res)
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) Latest(context.Context) (*models.AggregateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil, nil
	}
	return s.saved[len(s.saved)-1], nil
}

var defaultPeriods = models.EmaPeriods{Fast: 8, Slow: 21, Slowest: 233}
