package di

import (
	"context"
	"fmt"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/domain/repository"
	"VolPulse/internal/engine"
	"VolPulse/internal/handler/api"
	internalrepo "VolPulse/internal/repository"
	"VolPulse/internal/service/coininfo"
	"VolPulse/internal/service/feed"
	"VolPulse/internal/usecase"
	"VolPulse/pkg/cache"
	pkgch "VolPulse/pkg/clickhouse"
	"VolPulse/pkg/config"
	xhttp "VolPulse/pkg/http"
	pkgkafka "VolPulse/pkg/kafka"
	"VolPulse/pkg/logger"
	"VolPulse/pkg/metrics"
	"VolPulse/pkg/server"
)

const alertTable = "volume_alerts"

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when the sink
// needs one; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Sink.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer when the sink needs
// one; nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Sink.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the Kafka alert publisher.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAlertArchive creates the ClickHouse alert archive and ensures
// its schema.
func ProvideAlertArchive(client *pkgch.Client, cfg *config.Config) (repository.AlertArchive, error) {
	if client == nil {
		return nil, nil
	}
	archive := internalrepo.NewClickHouseArchive(client.DB(), cfg.ClickHouse.Database+"."+alertTable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		return nil, fmt.Errorf("alert archive: %w", err)
	}
	return archive, nil
}

// ProvideCache creates the metadata cache, Redis when configured,
// in-memory otherwise.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, error) {
	if cfg.CoinInfo.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithRedisAddress(cfg.CoinInfo.Redis.Host, cfg.CoinInfo.Redis.Port),
			cache.WithRedisAuth(cfg.CoinInfo.Redis.Password, cfg.CoinInfo.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		log.Info("redis cache connected", logger.String("host", cfg.CoinInfo.Redis.Host))
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideCoinInfo creates the symbol metadata resolver; nil when
// disabled.
func ProvideCoinInfo(c cache.Service, cfg *config.Config, log *logger.Logger) repository.CoinInfo {
	if !cfg.CoinInfo.Enabled || cfg.CoinInfo.InfoURL == "" {
		return nil
	}
	client := xhttp.NewClient(xhttp.WithClientTimeout(10 * time.Second))
	return coininfo.New(c, client, cfg.CoinInfo.InfoURL,
		coininfo.WithLogger(log),
		coininfo.WithTTL(cfg.CoinInfo.TTL),
	)
}

// ProvideFeedStream creates the WebSocket feed stream.
func ProvideFeedStream(cfg *config.Config) repository.FeedStream {
	return feed.New(cfg.Feed.URL, cfg.Feed.ReconnectDelay, cfg.Feed.PingInterval)
}

// ProvideAlertProcessor creates the alert sink router.
func ProvideAlertProcessor(
	pub repository.AlertPublisher,
	archive repository.AlertArchive,
	m repository.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.AlertProcessor {
	return usecase.NewAlertProcessor(pub, archive, m, cfg.Sink.Type, log)
}

// ProvideEngine creates the aggregation engine wired to the sink and
// the metadata resolver.
func ProvideEngine(
	cfg *config.Config,
	log *logger.Logger,
	m repository.Metrics,
	proc *usecase.AlertProcessor,
	info repository.CoinInfo,
) *engine.Engine {
	engCfg := engine.Config{
		Settings: engine.Settings{
			MinVolume:           cfg.Engine.MinVolume,
			AlertThresholdTimes: cfg.Engine.AlertThresholdTimes,
			ShowIncrease:        cfg.ShowIncrease(),
			ShowDecrease:        cfg.ShowDecrease(),
		},
		Cooldown:      cfg.Engine.AlertCooldown,
		Expiry:        cfg.Engine.SnapshotExpiry,
		SweepInterval: cfg.Engine.SweepInterval,
		HistoryLimit:  cfg.Engine.HistoryLimit,
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(m),
		engine.WithAlertHandler(func(ev *models.AlertEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := proc.Process(ctx, ev); err != nil {
				log.Error("alert sink error", logger.Error(err))
			}
		}),
	}
	if info != nil {
		opts = append(opts, engine.WithEnricher(func(s *models.Snapshot) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			meta, err := info.Lookup(ctx, s.Symbol)
			if err != nil {
				return
			}
			if s.FullName == "" {
				s.FullName = meta.FullName
			}
			if s.LogoURL == "" {
				s.LogoURL = meta.LogoURL
			}
		}))
	}

	return engine.New(engCfg, opts...)
}

// ProvideCollector creates the feed collector.
func ProvideCollector(stream repository.FeedStream, eng *engine.Engine, m repository.Metrics, cfg *config.Config) *usecase.Collector {
	return usecase.NewCollector(stream, eng, m, cfg.Feed.ResetOnReconnect)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *logger.Logger,
	eng *engine.Engine,
	collector *usecase.Collector,
	archive repository.AlertArchive,
) xhttp.Handler {
	return api.NewScreenerHandler(log, eng, collector, archive)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	eng *engine.Engine,
	collector *usecase.Collector,
	proc *usecase.AlertProcessor,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, log, eng, collector, proc, handler, chClient, cacheSvc)
}
