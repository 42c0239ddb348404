package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
	applogger "TrendBoard/pkg/logger"
	xutil "TrendBoard/pkg/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNoLatest is returned when no persisted run is available.
var ErrNoLatest = errors.New("no persisted run available")

const persistTimeout = 15 * time.Second

// ScreenQuery is the parsed form of a ScreenRequest.
type ScreenQuery struct {
	Range models.PriceRange
	Trend models.Trend
	Sort  string
}

// ParseScreenRequest converts raw request values. Missing or non-numeric
// prices fall back to 0 and +inf.
func ParseScreenRequest(req models.ScreenRequest) ScreenQuery {
	q := ScreenQuery{
		Range: models.PriceRange{Min: xutil.ParseDecimalDefault(req.MinPrice, decimal.Zero)},
		Trend: models.Trend(strings.ToUpper(req.Trend)),
		Sort:  req.Sort,
	}
	if d, ok := xutil.ParseDecimal(req.MaxPrice); ok {
		q.Range.Max = decimal.NewNullDecimal(d)
	}
	return q
}

// ScreenerUseCase runs discovery, aggregation, persistence and filtering.
type ScreenerUseCase struct {
	gw       domrepo.Gateway
	agg      *Aggregator
	sink     domrepo.Sink
	latest   domrepo.LatestReader
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	interval domrepo.Interval
	timeout  time.Duration
}

func NewScreenerUseCase(
	gw domrepo.Gateway,
	agg *Aggregator,
	interval domrepo.Interval,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *ScreenerUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &ScreenerUseCase{gw: gw, agg: agg, interval: interval, metrics: metrics, logger: l}
}

// SetSink attaches an optional persistence sink.
func (uc *ScreenerUseCase) SetSink(s domrepo.Sink) { uc.sink = s }

// SetLatestReader attaches an optional source for the last persisted run.
func (uc *ScreenerUseCase) SetLatestReader(r domrepo.LatestReader) { uc.latest = r }

// SetRunTimeout bounds a whole run. Instruments still pending at the deadline
// are reported as failures.
func (uc *ScreenerUseCase) SetRunTimeout(d time.Duration) { uc.timeout = d }

// Run produces a fresh, unfiltered result. Only a discovery failure is returned
// as an error; per-instrument failures are listed in the result.
func (uc *ScreenerUseCase) Run(ctx context.Context) (*models.AggregateResult, error) {
	start := time.Now()
	runCtx := ctx
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	instruments, err := uc.gw.ListActiveInstruments(runCtx)
	if err != nil {
		uc.recordError("discovery")
		return nil, fmt.Errorf("list instruments: %w", err)
	}

	res := uc.agg.Aggregate(runCtx, instruments)
	res.RunID = uuid.NewString()
	res.Interval = string(uc.interval)

	took := time.Since(start)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("screen_run", took.Seconds())
	}
	uc.logger.Info("screen run finished",
		applogger.String("run_id", res.RunID),
		applogger.String("interval", res.Interval),
		applogger.Int("requested", res.Requested),
		applogger.Int("succeeded", res.Succeeded()),
		applogger.Int("failed", res.Failed()),
		applogger.Duration("duration_ms", took),
	)

	uc.persist(ctx, &res)
	return &res, nil
}

// Screen runs a fresh snapshot and applies the query to it.
func (uc *ScreenerUseCase) Screen(ctx context.Context, q ScreenQuery) (*models.ScreenView, error) {
	res, err := uc.Run(ctx)
	if err != nil {
		return nil, err
	}
	return BuildView(res, q), nil
}

// Latest returns the last persisted run filtered by q.
func (uc *ScreenerUseCase) Latest(ctx context.Context, q ScreenQuery) (*models.ScreenView, error) {
	if uc.latest == nil {
		return nil, ErrNoLatest
	}
	res, err := uc.latest.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNoLatest
	}
	return BuildView(res, q), nil
}

// BuildView filters and sorts a copy of the result's snapshots.
func BuildView(res *models.AggregateResult, q ScreenQuery) *models.ScreenView {
	rows := FilterByPrice(res.Snapshots, q.Range)
	rows = FilterByTrend(rows, q.Trend)
	SortSnapshots(rows, q.Sort)

	v := &models.ScreenView{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Interval:    res.Interval,
		Requested:   res.Requested,
		Failed:      res.Failed(),
		Total:       len(rows),
		Rows:        rows,
		Failures:    res.Failures,
	}
	if !q.Range.Min.IsZero() {
		v.MinPrice = q.Range.Min.String()
	}
	if q.Range.Max.Valid {
		v.MaxPrice = q.Range.Max.Decimal.String()
	}
	return v
}

// persist outlives the caller's cancellation so a finished run is still
// written when the HTTP client goes away.
func (uc *ScreenerUseCase) persist(ctx context.Context, res *models.AggregateResult) {
	if uc.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	start := time.Now()
	if err := uc.sink.Save(ctx, res); err != nil {
		uc.recordError("persistence")
		uc.logger.Error("persist run failed",
			applogger.String("run_id", res.RunID),
			applogger.String("sink", uc.sink.Name()),
			applogger.Error(err),
		)
		return
	}
	if uc.metrics != nil {
		uc.metrics.RecordLatency("persist", time.Since(start).Seconds())
	}
}

func (uc *ScreenerUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}
