package usecase

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
)

func newAgg(gw *fakeGateway, workers int, m *memMetrics) *Aggregator {
	f := NewSnapshotFetcher(gw, FetchConfig{Periods: defaultPeriods})
	var metrics domrepo.Metrics
	if m != nil {
		metrics = m
	}
	return NewAggregator(f, workers, metrics, nil)
}

func TestAggregateCompleteness(t *testing.T) {
	const n = 37
	ids, closes := instrumentsN(n)

	for _, workers := range []int{1, n, 2 * n} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			gw := &fakeGateway{instruments: ids, closes: closes}
			res := newAgg(gw, workers, nil).Aggregate(context.Background(), ids)

			if res.Requested != n {
				t.Fatalf("expected requested %d, got %d", n, res.Requested)
			}
			if len(res.Snapshots) != n {
				t.Fatalf("expected %d snapshots, got %d", n, len(res.Snapshots))
			}
			if len(res.Failures) != 0 {
				t.Fatalf("expected no failures, got %v", res.Failures)
			}
			seen := map[models.InstrumentID]bool{}
			for _, s := range res.Snapshots {
				if seen[s.Instrument] {
					t.Fatalf("duplicate snapshot %s", s.Instrument)
				}
				seen[s.Instrument] = true
			}
			for _, id := range ids {
				if !seen[id] {
					t.Fatalf("missing snapshot %s", id)
				}
			}
			if !sort.SliceIsSorted(res.Snapshots, func(i, j int) bool {
				return res.Snapshots[i].Instrument < res.Snapshots[j].Instrument
			}) {
				t.Fatalf("snapshots not sorted by instrument")
			}
			if gw.calls != n {
				t.Fatalf("expected %d gateway calls, got %d", n, gw.calls)
			}
		})
	}
}

func TestAggregateFaultTolerance(t *testing.T) {
	const n, k = 20, 7
	ids, closes := instrumentsN(n)
	fail := map[models.InstrumentID]bool{}
	for i := 0; i < k; i++ {
		fail[ids[i*2]] = true
	}
	gw := &fakeGateway{instruments: ids, closes: closes, fail: fail}
	m := newMemMetrics()

	res := newAgg(gw, 4, m).Aggregate(context.Background(), ids)

	if len(res.Snapshots) != n-k {
		t.Fatalf("expected %d snapshots, got %d", n-k, len(res.Snapshots))
	}
	if len(res.Failures) != k {
		t.Fatalf("expected %d failures, got %d", k, len(res.Failures))
	}
	for _, s := range res.Snapshots {
		if fail[s.Instrument] {
			t.Fatalf("failed instrument %s present in snapshots", s.Instrument)
		}
	}
	for _, f := range res.Failures {
		if !fail[f.Instrument] || f.Reason == "" {
			t.Fatalf("unexpected failure entry %+v", f)
		}
	}
	if m.fetch["ok"] != n-k || m.fetch["error"] != k || m.errs["gateway"] != k {
		t.Fatalf("unexpected metrics fetch=%v errs=%v", m.fetch, m.errs)
	}
	if m.inFlight != 0 {
		t.Fatalf("in-flight gauge should return to 0, got %v", m.inFlight)
	}
	if len(m.prices) != n-k {
		t.Fatalf("expected %d last prices recorded, got %d", n-k, len(m.prices))
	}
}

func TestAggregateAllFail(t *testing.T) {
	ids, closes := instrumentsN(5)
	fail := map[models.InstrumentID]bool{}
	for _, id := range ids {
		fail[id] = true
	}
	gw := &fakeGateway{instruments: ids, closes: closes, fail: fail}
	res := newAgg(gw, 3, nil).Aggregate(context.Background(), ids)
	if len(res.Snapshots) != 0 || len(res.Failures) != 5 {
		t.Fatalf("expected 0 snapshots and 5 failures, got %d/%d", len(res.Snapshots), len(res.Failures))
	}
}

func TestAggregateRecoversPanics(t *testing.T) {
	ids, closes := instrumentsN(6)
	gw := &fakeGateway{instruments: ids, closes: closes, panicOn: map[models.InstrumentID]bool{ids[2]: true}}
	res := newAgg(gw, 2, nil).Aggregate(context.Background(), ids)
	if len(res.Snapshots) != 5 || len(res.Failures) != 1 {
		t.Fatalf("expected 5/1, got %d/%d", len(res.Snapshots), len(res.Failures))
	}
	if res.Failures[0].Instrument != ids[2] {
		t.Fatalf("unexpected failure %+v", res.Failures[0])
	}
}

func TestAggregateEmpty(t *testing.T) {
	res := newAgg(&fakeGateway{}, 4, nil).Aggregate(context.Background(), nil)
	if res.Requested != 0 || len(res.Snapshots) != 0 || len(res.Failures) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAggregateConcurrencyBound(t *testing.T) {
	ids, closes := instrumentsN(40)
	for _, workers := range []int{1, 3, 8} {
		gw := &fakeGateway{instruments: ids, closes: closes, delay: 5 * time.Millisecond}
		res := newAgg(gw, workers, nil).Aggregate(context.Background(), ids)
		if len(res.Snapshots) != len(ids) {
			t.Fatalf("workers=%d: expected %d snapshots, got %d", workers, len(ids), len(res.Snapshots))
		}
		if gw.maxSeen > int64(workers) {
			t.Fatalf("workers=%d: observed %d concurrent gateway calls", workers, gw.maxSeen)
		}
		if workers > 1 && gw.maxSeen < 2 {
			t.Fatalf("workers=%d: expected parallel calls, max in flight was %d", workers, gw.maxSeen)
		}
	}
}

func TestAggregateWaitsForCancelledWork(t *testing.T) {
	ids, closes := instrumentsN(10)
	gw := &fakeGateway{instruments: ids, closes: closes}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newAgg(gw, 3, nil).Aggregate(ctx, ids)
	if len(res.Snapshots)+len(res.Failures) != len(ids) {
		t.Fatalf("every instrument must settle: %d + %d != %d", len(res.Snapshots), len(res.Failures), len(ids))
	}
}

func TestNewAggregatorClampsWorkers(t *testing.T) {
	if got := NewAggregator(nil, 0, nil, nil).MaxWorkers(); got != 1 {
		t.Fatalf("expected 1 worker, got %d", got)
	}
	if got := NewAggregator(nil, -5, nil, nil).MaxWorkers(); got != 1 {
		t.Fatalf("expected 1 worker, got %d", got)
	}
}
