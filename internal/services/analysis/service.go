package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markcheno/go-talib"

	"cassandra/internal/domain/market"
	"cassandra/internal/domain/news"
	"cassandra/internal/domain/peers"
	"cassandra/internal/domain/sentiment"
	"cassandra/internal/events"
	"cassandra/internal/metrics"
	svcpeers "cassandra/internal/services/peers"
	"cassandra/internal/services/scoring"
	"cassandra/internal/services/timeseries"
	"cassandra/pkg/logger"
)

// Source tags which portion of a report is real
type Source string

const (
	SourceLive      Source = "live"      // everything came from upstream
	SourcePartial   Source = "partial"   // some upstream portion degraded
	SourceSynthetic Source = "synthetic" // quote and news both failed, dataset is illustrative
)

// Report is the immutable result of one analysis request. A new report is
// built per call; nothing is shared or mutated across requests.
type Report struct {
	ID            uuid.UUID              `json:"id"`
	Symbol        string                 `json:"symbol"`
	Window        timeseries.Window      `json:"window"`
	Quote         *market.Quote          `json:"quote,omitempty"`
	Series        []sentiment.DailyPoint `json:"series"`
	SMA           []float64              `json:"sma,omitempty"`
	Overall       float64                `json:"overall_sentiment"`
	Peers         peers.Ranking          `json:"peers"`
	News          []news.Item            `json:"news"`
	UnscoredCount int                    `json:"unscored_count"`
	Source        Source                 `json:"source"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// Degraded reports whether any portion of the report is not live data
func (r *Report) Degraded() bool {
	return r.Source != SourceLive
}

// Config bounds the orchestrator's upstream usage
type Config struct {
	MaxHeadlines int
	CallTimeout  time.Duration
	SMAPeriod    int
}

// DefaultConfig returns the shipped orchestrator bounds
func DefaultConfig() Config {
	return Config{
		MaxHeadlines: 50,
		CallTimeout:  10 * time.Second,
		SMAPeriod:    7,
	}
}

// Service sequences the full pipeline: fetch, score, aggregate, rank,
// assemble. It degrades to a flagged synthetic dataset instead of failing
// when the upstream news and quote fetches are both unavailable.
type Service struct {
	quotes     market.QuoteProvider
	candles    market.CandleProvider
	newsFeed   news.Provider
	scorer     *scoring.Service
	aggregator *timeseries.Aggregator
	ranker     *svcpeers.Ranker
	history    sentiment.Repository // optional, best-effort persistence
	publisher  *events.Publisher    // optional, best-effort events
	cfg        Config
	log        *logger.Logger
}

// NewService creates a new analysis orchestrator
func NewService(
	quotes market.QuoteProvider,
	candles market.CandleProvider,
	newsFeed news.Provider,
	scorer *scoring.Service,
	aggregator *timeseries.Aggregator,
	ranker *svcpeers.Ranker,
	history sentiment.Repository,
	publisher *events.Publisher,
	cfg Config,
) *Service {
	if cfg.MaxHeadlines <= 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		quotes:     quotes,
		candles:    candles,
		newsFeed:   newsFeed,
		scorer:     scorer,
		aggregator: aggregator,
		ranker:     ranker,
		history:    history,
		publisher:  publisher,
		cfg:        cfg,
		log:        logger.Get().With("component", "analysis"),
	}
}

// Analyze runs the full pipeline for one symbol and window.
//
// The window is validated before any network activity. Upstream fetches
// run concurrently with independent timeouts; a timeout counts as a
// failure. A superseded request (cancelled ctx) is discarded at the join
// point: nothing is persisted or published for it.
func (s *Service) Analyze(ctx context.Context, symbol string, window timeseries.Window) (*Report, error) {
	start := time.Now()

	if err := window.Validate(); err != nil {
		metrics.AnalysisRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	quote, items, closes, quoteErr, newsErr, candlesErr := s.fetch(ctx, symbol, window)

	// Join point: discard stale work before building any result
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var report *Report
	if quoteErr != nil && newsErr != nil {
		s.log.Warn("Quote and news both unavailable, serving synthetic dataset",
			"symbol", symbol,
			"quote_error", quoteErr,
			"news_error", newsErr,
		)
		report = s.syntheticReport(ctx, symbol, window)
	} else {
		report = s.liveReport(ctx, symbol, window, quote, items, closes, quoteErr, newsErr, candlesErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.ID = uuid.New()
	report.GeneratedAt = time.Now()

	s.persist(ctx, report)
	s.publish(ctx, report, time.Since(start))

	metrics.AnalysisRuns.WithLabelValues(string(report.Source)).Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	s.log.Info("Analysis complete",
		"symbol", symbol,
		"source", report.Source,
		"series_len", len(report.Series),
		"peers", len(report.Peers),
		"unscored", report.UnscoredCount,
		"duration", time.Since(start),
	)

	return report, nil
}

// fetch scatters the three upstream calls; each carries its own timeout
// and failures are returned, not raised
func (s *Service) fetch(ctx context.Context, symbol string, window timeseries.Window) (
	quote *market.Quote,
	items []news.Item,
	closes []market.Candle,
	quoteErr, newsErr, candlesErr error,
) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		quote, quoteErr = s.quotes.GetQuote(callCtx, symbol)
	}()

	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		items, newsErr = s.newsFeed.GetNews(callCtx, symbol, window.From, window.To)
		if newsErr == nil && len(items) > s.cfg.MaxHeadlines {
			items = items[:s.cfg.MaxHeadlines]
		}
	}()

	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		closes, candlesErr = s.candles.GetDailyCloses(callCtx, symbol, window.From, window.To)
	}()

	wg.Wait()
	return
}

// liveReport builds a report from whatever upstream portions succeeded
func (s *Service) liveReport(
	ctx context.Context,
	symbol string,
	window timeseries.Window,
	quote *market.Quote,
	items []news.Item,
	closes []market.Candle,
	quoteErr, newsErr, candlesErr error,
) *Report {
	source := SourceLive
	if quoteErr != nil || newsErr != nil || candlesErr != nil {
		source = SourcePartial
	}

	if newsErr != nil {
		items = nil
	}
	if candlesErr != nil {
		closes = nil
	}

	scored, unscored := s.scorer.ScoreAll(ctx, items)
	if unscored > 0 && unscored == len(items) && len(items) > 0 {
		source = SourcePartial
	}

	basePrice := 0.0
	if quote != nil {
		basePrice = quote.PreviousClose
	}

	series, err := s.aggregator.Aggregate(window, scored, closes, basePrice)
	if err != nil {
		// Window was validated up front; this only fires on a programming error
		s.log.Error("Aggregation failed", "symbol", symbol, "error", err)
		series = nil
	}

	overall := scoring.OverallSentiment(scored)

	ranking, err := s.ranker.Rank(ctx, symbol, overall)
	if err != nil {
		ranking = peers.Ranking{}
	}

	return &Report{
		Symbol:        symbol,
		Window:        window,
		Quote:         quote,
		Series:        series,
		SMA:           s.smaOverlay(series),
		Overall:       overall,
		Peers:         ranking,
		News:          scored,
		UnscoredCount: unscored,
		Source:        source,
	}
}

// syntheticReport builds a deterministic, fully-formed placeholder
// dataset for the requested window. Values are illustrative; the
// SourceSynthetic tag is what makes them safe.
func (s *Service) syntheticReport(ctx context.Context, symbol string, window timeseries.Window) *Report {
	base := syntheticBasePrice(symbol)

	quote := &market.Quote{
		Symbol:        symbol,
		Current:       base,
		High:          base,
		Low:           base,
		Open:          base,
		PreviousClose: base,
		Timestamp:     time.Now(),
	}

	series, err := s.aggregator.Aggregate(window, nil, nil, base)
	if err != nil {
		series = nil
	}

	return &Report{
		Symbol: symbol,
		Window: window,
		Quote:  quote,
		Series: series,
		SMA:    s.smaOverlay(series),
		News:   []news.Item{},
		Peers:  peers.Ranking{},
		Source: SourceSynthetic,
	}
}

// syntheticBasePrice derives a stable per-symbol placeholder price so
// repeated degraded requests agree with each other
func syntheticBasePrice(symbol string) float64 {
	h := uint32(0)
	for _, c := range symbol {
		h = h*31 + uint32(c)
	}
	return 50 + float64(h%150)
}

// smaOverlay computes a simple moving average over the series closes for
// charting; nil when the series is shorter than the period
func (s *Service) smaOverlay(series []sentiment.DailyPoint) []float64 {
	if s.cfg.SMAPeriod <= 1 || len(series) < s.cfg.SMAPeriod {
		return nil
	}
	closes := make([]float64, len(series))
	hasPrice := false
	for i, p := range series {
		closes[i] = p.Price
		if p.PriceSource != sentiment.PriceSourceNone {
			hasPrice = true
		}
	}
	if !hasPrice {
		return nil
	}
	return talib.Sma(closes, s.cfg.SMAPeriod)
}

// persist stores the scored headlines and daily series; failures are
// logged and never fail the request
func (s *Service) persist(ctx context.Context, report *Report) {
	if s.history == nil || report.Source == SourceSynthetic {
		return
	}

	headlines := make([]sentiment.ScoredHeadline, 0, len(report.News))
	for _, item := range report.News {
		if item.Sentiment == nil {
			continue
		}
		headlines = append(headlines, sentiment.ScoredHeadline{
			Symbol:      report.Symbol,
			Headline:    item.Headline,
			Source:      item.Source,
			URL:         item.URL,
			Label:       string(item.Sentiment.Label),
			Score:       item.Sentiment.Score,
			Signed:      item.Sentiment.SignedValue(),
			PublishedAt: item.PublishedAt,
			ScoredAt:    report.GeneratedAt,
		})
	}

	if len(headlines) > 0 {
		if err := s.history.InsertScoredHeadlines(ctx, headlines); err != nil {
			s.log.Warn("Failed to persist scored headlines", "symbol", report.Symbol, "error", err)
		}
	}

	if len(report.Series) > 0 {
		if err := s.history.InsertDailySeries(ctx, report.Symbol, report.Series); err != nil {
			s.log.Warn("Failed to persist daily series", "symbol", report.Symbol, "error", err)
		}
	}
}

// publish emits the completion event; failures are logged only
func (s *Service) publish(ctx context.Context, report *Report, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}
	event := events.AnalysisCompletedEvent{
		RequestID:  report.ID.String(),
		Symbol:     report.Symbol,
		Overall:    report.Overall,
		Source:     string(report.Source),
		PeerCount:  len(report.Peers),
		WindowFrom: report.Window.From,
		WindowTo:   report.Window.To,
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  report.GeneratedAt,
	}
	if err := s.publisher.PublishAnalysisCompleted(ctx, event); err != nil {
		s.log.Warn("Failed to publish analysis event", "symbol", report.Symbol, "error", err)
	}
}
