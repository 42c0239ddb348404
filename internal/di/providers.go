package di

import (
	"fmt"

	"TrendBoard/internal/domain/repository"
	api "TrendBoard/internal/handler/api"
	internalrepo "TrendBoard/internal/repository"
	"TrendBoard/internal/service/binance"
	"TrendBoard/internal/service/ratelimit"
	"TrendBoard/internal/usecase"
	"TrendBoard/pkg/cache"
	"TrendBoard/pkg/config"
	xhttp "TrendBoard/pkg/http"
	pkgkafka "TrendBoard/pkg/kafka"
	applogger "TrendBoard/pkg/logger"
	"TrendBoard/pkg/metrics"
	"TrendBoard/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideGateway creates the Binance futures gateway. The keep-alive pool
// is sized to the worker count.
func ProvideGateway(cfg *config.Config) repository.Gateway {
	return binance.New(binance.Config{
		BaseURL:    cfg.Exchange.BaseURL,
		APIKey:     cfg.Exchange.APIKey,
		Timeout:    cfg.Exchange.Timeout,
		MaxConns:   cfg.Screener.Workers,
		QuoteAsset: cfg.Exchange.QuoteAsset,
	})
}

// ProvideSnapshotFetcher creates the per-instrument fetcher.
func ProvideSnapshotFetcher(gw repository.Gateway, cfg *config.Config) *usecase.SnapshotFetcher {
	return usecase.NewSnapshotFetcher(gw, usecase.FetchConfig{
		Interval: repository.NormalizeInterval(cfg.Screener.Interval),
		Limit:    cfg.Screener.Limit,
		Periods:  cfg.Screener.Ema,
	})
}

// ProvideAggregator creates the bounded worker pool.
func ProvideAggregator(
	fetcher *usecase.SnapshotFetcher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Aggregator {
	return usecase.NewAggregator(fetcher, cfg.Screener.Workers, m, l)
}

// ProvideSinks builds every enabled persistence sink. A sink that cannot
// connect fails startup. Without Redis the latest run is cached in memory.
func ProvideSinks(cfg *config.Config, l *applogger.Logger) (*internalrepo.MultiSink, error) {
	var sinks []repository.Sink
	p := cfg.Persistence

	if p.JSON.Enabled {
		sinks = append(sinks, internalrepo.NewJSONFileSink(p.JSON.Path, p.JSON.Indent))
	}

	if p.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(p.Redis.Addr),
			cache.WithRedisPassword(p.Redis.Password),
			cache.WithRedisDB(p.Redis.DB),
			cache.WithRedisPrefix(p.Redis.Prefix),
		)
		if err != nil {
			closeAll(sinks)
			return nil, fmt.Errorf("redis sink: %w", err)
		}
		sinks = append(sinks, internalrepo.NewCacheSink(rc, p.Redis.TTL))
	} else {
		// Keeps /api/snapshots/latest served from process memory.
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(8), cache.WithMemoryCleanup(p.Redis.TTL))
		sinks = append(sinks, internalrepo.NewCacheSink(mc, p.Redis.TTL))
	}

	if p.Kafka.Enabled {
		producer, err := ProvideKafkaProducer(cfg)
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		sinks = append(sinks, internalrepo.NewKafkaSink(producer, p.Kafka.Topic))
	}

	ms := internalrepo.NewMultiSink(sinks...)
	l.Info("persistence configured", applogger.String("sinks", ms.Name()))
	return ms, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	k := cfg.Persistence.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithTopic(k.Topic),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideScreener creates the screening use case with its optional sinks.
func ProvideScreener(
	gw repository.Gateway,
	agg *usecase.Aggregator,
	sinks *internalrepo.MultiSink,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ScreenerUseCase {
	uc := usecase.NewScreenerUseCase(gw, agg, repository.NormalizeInterval(cfg.Screener.Interval), m, l)
	uc.SetRunTimeout(cfg.Screener.Timeout)
	if sinks.Len() > 0 {
		uc.SetSink(sinks)
	}
	if r := sinks.LatestReader(); r != nil {
		uc.SetLatestReader(r)
	}
	return uc
}

// ProvideLimiter creates the per-client limiter shared by the HTTP handlers.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	uc *usecase.ScreenerUseCase,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewScreenerEchoHandler(l, uc, limiter, cfg.RateLimit)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	uc *usecase.ScreenerUseCase,
	h xhttp.Handler,
	limiter *ratelimit.Limiter,
	sinks *internalrepo.MultiSink,
) *server.App {
	return server.New(cfg, l, uc, h, limiter, sinks)
}

func closeAll(sinks []repository.Sink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}
