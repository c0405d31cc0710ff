package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cassandra/internal/adapters/ai"
	"cassandra/internal/adapters/clickhouse"
	"cassandra/internal/adapters/config"
	"cassandra/internal/adapters/errors/noop"
	"cassandra/internal/adapters/errors/sentry"
	"cassandra/internal/adapters/finnhub"
	"cassandra/internal/adapters/kafka"
	"cassandra/internal/adapters/postgres"
	"cassandra/internal/adapters/redis"
	"cassandra/internal/domain/news"
	"cassandra/internal/domain/peers"
	"cassandra/internal/events"
	"cassandra/internal/metrics"
	"cassandra/internal/ml/sentiment"
	chrepo "cassandra/internal/repository/clickhouse"
	pgrepo "cassandra/internal/repository/postgres"
	"cassandra/internal/services/analysis"
	svcpeers "cassandra/internal/services/peers"
	"cassandra/internal/services/scoring"
	"cassandra/internal/services/timeseries"
	"cassandra/internal/workers"
	workersanalysis "cassandra/internal/workers/analysis"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Register()
	if cfg.Metrics.Enabled {
		metrics.Serve(cfg.Metrics.Addr)
		log.Info("Metrics endpoint started", "addr", cfg.Metrics.Addr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Databases
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Repositories
	history := chrepo.NewBufferedSentimentRepository(chrepo.NewSentimentRepository(chClient.Conn()))
	history.Start(ctx)
	watchRepo := pgrepo.NewWatchlistRepository(pgClient.DB())

	// Events
	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()
	publisher := events.NewPublisher(producer)

	// Upstream market data
	market := finnhub.NewCachedClient(finnhub.NewClient(cfg.Finnhub), redisClient, cfg.Finnhub)

	// Classifier
	classifier, err := initClassifier(ctx, cfg.Classifier)
	if err != nil {
		log.Fatalf("Failed to initialize classifier: %v", err)
	}
	log.Info("Classifier initialized", "provider", cfg.Classifier.Provider)

	// Services
	scorer := scoring.NewService(classifier, cfg.Analysis.ScoringConcurrency, cfg.Classifier.Timeout)
	aggregator := timeseries.NewAggregator()
	ranker := svcpeers.NewRanker(
		market, market, peers.DefaultStaticPeerTable(), market, scorer,
		svcpeers.RankerConfig{
			MaxPeers:       cfg.Analysis.MaxPeers,
			MaxHeadlines:   cfg.Analysis.MaxPeerHeadlines,
			NewsWindowDays: cfg.Analysis.PeerNewsWindowDays,
			CallTimeout:    cfg.Analysis.ProviderCallTimeout,
		},
	)
	analyzer := analysis.NewService(
		market, market, market, scorer, aggregator, ranker, history, publisher,
		analysis.Config{
			MaxHeadlines: cfg.Analysis.MaxHeadlines,
			CallTimeout:  cfg.Analysis.ProviderCallTimeout,
			SMAPeriod:    cfg.Analysis.SMAPeriod,
		},
	)

	// Workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workersanalysis.NewWatchlistRefresher(watchRepo, analyzer, cfg.Workers))

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, scheduler, history, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initClassifier builds the configured headline classifier
func initClassifier(ctx context.Context, cfg config.ClassifierConfig) (news.Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return ai.NewOpenAIClassifier(cfg.OpenAIKey, cfg.Timeout)
	case "gemini":
		return ai.NewGeminiClassifier(ctx, cfg.GeminiKey, cfg.Timeout)
	case "onnx":
		return sentiment.NewClassifier(cfg.ModelPath)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown classifier provider %q", cfg.Provider)
	}
}

// waitForShutdown waits for a shutdown signal and drains components
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	scheduler *workers.Scheduler,
	history *chrepo.BufferedSentimentRepository,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Scheduler shutdown: %v", err)
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := history.Stop(drainCtx); err != nil {
		log.Warnf("Failed to drain headline buffer: %v", err)
	}

	cancel()

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
