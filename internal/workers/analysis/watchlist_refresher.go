package analysis

import (
	"context"
	"sync"
	"time"

	"cassandra/internal/adapters/config"
	"cassandra/internal/domain/watchlist"
	"cassandra/internal/services/analysis"
	"cassandra/internal/services/timeseries"
	"cassandra/internal/workers"
)

// WatchlistRefresher periodically re-runs the analysis pipeline for every
// active watchlist symbol so persisted series and caches stay warm.
// One slow or failing symbol never blocks the rest.
type WatchlistRefresher struct {
	*workers.BaseWorker
	repo           watchlist.Repository
	analyzer       *analysis.Service
	windowDays     int
	maxConcurrency int
}

// NewWatchlistRefresher creates a new watchlist refresh worker
func NewWatchlistRefresher(
	repo watchlist.Repository,
	analyzer *analysis.Service,
	cfg config.WorkerConfig,
) *WatchlistRefresher {
	windowDays := cfg.WatchlistWindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	maxConcurrency := cfg.WatchlistMaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 3
	}

	return &WatchlistRefresher{
		BaseWorker:     workers.NewBaseWorker("watchlist_refresher", cfg.WatchlistRefreshInterval, cfg.WatchlistRefreshEnabled),
		repo:           repo,
		analyzer:       analyzer,
		windowDays:     windowDays,
		maxConcurrency: maxConcurrency,
	}
}

// Run refreshes all active watchlist entries
func (w *WatchlistRefresher) Run(ctx context.Context) error {
	start := time.Now()

	entries, err := w.repo.ListActive(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}

	if len(entries) == 0 {
		w.Log().Debug("Watchlist is empty, nothing to refresh")
		w.RecordRun(time.Since(start))
		return nil
	}

	w.Log().Info("Refreshing watchlist", "entries", len(entries))

	window := timeseries.NewWindow(w.windowDays)

	var wg sync.WaitGroup
	sem := make(chan struct{}, w.maxConcurrency)

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(entry *watchlist.Entry) {
			defer wg.Done()
			defer func() { <-sem }()

			report, err := w.analyzer.Analyze(ctx, entry.Symbol, window)
			if err != nil {
				w.Log().Warn("Watchlist refresh failed for symbol",
					"symbol", entry.Symbol,
					"error", err,
				)
				return
			}
			if report.Degraded() {
				w.Log().Warn("Watchlist refresh produced degraded report",
					"symbol", entry.Symbol,
					"source", report.Source,
				)
			}
		}(entry)
	}

	wg.Wait()

	w.Log().Info("Watchlist refresh complete",
		"entries", len(entries),
		"duration", time.Since(start),
	)
	w.RecordRun(time.Since(start))
	return nil
}
