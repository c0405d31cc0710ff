package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"cassandra/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Finnhub       FinnhubConfig
	Classifier    ClassifierConfig
	Analysis      AnalysisConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
	Metrics       MetricsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"cassandra"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"cassandra"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"cassandra"`
}

type FinnhubConfig struct {
	APIKey         string        `envconfig:"FINNHUB_API_KEY" required:"true"`
	BaseURL        string        `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`
	RequestTimeout time.Duration `envconfig:"FINNHUB_REQUEST_TIMEOUT" default:"10s"`
	// Free tier allows 60 calls/minute; keep headroom for the peer fan-out
	RateLimitPerMinute int           `envconfig:"FINNHUB_RATE_LIMIT_PER_MINUTE" default:"50"`
	QuoteCacheTTL      time.Duration `envconfig:"FINNHUB_QUOTE_CACHE_TTL" default:"30s"`
	ProfileCacheTTL    time.Duration `envconfig:"FINNHUB_PROFILE_CACHE_TTL" default:"12h"`
	PeersCacheTTL      time.Duration `envconfig:"FINNHUB_PEERS_CACHE_TTL" default:"12h"`
}

type ClassifierConfig struct {
	// Provider selects the headline classifier: openai, gemini, or onnx
	Provider  string        `envconfig:"CLASSIFIER_PROVIDER" default:"openai"`
	OpenAIKey string        `envconfig:"OPENAI_API_KEY"`
	GeminiKey string        `envconfig:"GEMINI_API_KEY"`
	ModelPath string        `envconfig:"CLASSIFIER_MODEL_PATH" default:"models/headline_sentiment.onnx"`
	Timeout   time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"15s"`
}

type AnalysisConfig struct {
	// Bounds on the peer ranking fan-out; deliberate ceilings, not tuning knobs
	MaxPeers            int           `envconfig:"ANALYSIS_MAX_PEERS" default:"6"`
	MaxPeerHeadlines    int           `envconfig:"ANALYSIS_MAX_PEER_HEADLINES" default:"8"`
	PeerNewsWindowDays  int           `envconfig:"ANALYSIS_PEER_NEWS_WINDOW_DAYS" default:"7"`
	MaxHeadlines        int           `envconfig:"ANALYSIS_MAX_HEADLINES" default:"50"`
	ScoringConcurrency  int           `envconfig:"ANALYSIS_SCORING_CONCURRENCY" default:"4"`
	ProviderCallTimeout time.Duration `envconfig:"ANALYSIS_PROVIDER_CALL_TIMEOUT" default:"10s"`
	SMAPeriod           int           `envconfig:"ANALYSIS_SMA_PERIOD" default:"7"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type WorkerConfig struct {
	WatchlistRefreshInterval time.Duration `envconfig:"WORKER_WATCHLIST_REFRESH_INTERVAL" default:"15m"`
	WatchlistRefreshEnabled  bool          `envconfig:"WORKER_WATCHLIST_REFRESH_ENABLED" default:"true"`
	WatchlistMaxConcurrency  int           `envconfig:"WORKER_WATCHLIST_MAX_CONCURRENCY" default:"3"`
	WatchlistWindowDays      int           `envconfig:"WORKER_WATCHLIST_WINDOW_DAYS" default:"30"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
