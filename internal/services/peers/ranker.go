package peers

import (
	"context"
	"sort"
	"sync"
	"time"

	"cassandra/internal/domain/news"
	"cassandra/internal/domain/peers"
	"cassandra/internal/services/scoring"
	"cassandra/pkg/logger"
)

// RankerConfig bounds the peer fan-out. The caps are deliberate resource
// ceilings on upstream and classifier calls, not a true top-N selection.
type RankerConfig struct {
	MaxPeers       int
	MaxHeadlines   int
	NewsWindowDays int
	CallTimeout    time.Duration
}

// DefaultRankerConfig returns the shipped fan-out bounds: 6 peers with at
// most 8 headlines each over the last 7 days
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		MaxPeers:       6,
		MaxHeadlines:   8,
		NewsWindowDays: 7,
		CallTimeout:    10 * time.Second,
	}
}

// Ranker resolves the peer set of a subject and ranks peers whose recent
// aggregate sentiment exceeds a baseline
type Ranker struct {
	profiles peers.ProfileProvider
	peerList peers.PeerProvider
	fallback *peers.StaticPeerTable
	newsFeed news.Provider
	scorer   *scoring.Service
	cfg      RankerConfig
	log      *logger.Logger
}

// NewRanker creates a new peer ranker
func NewRanker(
	profiles peers.ProfileProvider,
	peerList peers.PeerProvider,
	fallback *peers.StaticPeerTable,
	newsFeed news.Provider,
	scorer *scoring.Service,
	cfg RankerConfig,
) *Ranker {
	if cfg.MaxPeers <= 0 {
		cfg = DefaultRankerConfig()
	}
	return &Ranker{
		profiles: profiles,
		peerList: peerList,
		fallback: fallback,
		newsFeed: newsFeed,
		scorer:   scorer,
		cfg:      cfg,
		log:      logger.Get().With("component", "peer_ranker"),
	}
}

// Rank resolves peers of the subject, scores each peer's recent news
// concurrently, and returns candidates above the baseline sorted
// descending by aggregate sentiment (symbol-ascending tie-break).
//
// Degradation is per candidate: a candidate whose profile, news or
// scoring fails becomes an explicit insufficient-data entry with a fixed
// aggregate of 0. Only a total peer-resolution failure yields an empty
// ranking, and that is still not an error to the caller.
func (r *Ranker) Rank(ctx context.Context, subject string, baseline float64) (peers.Ranking, error) {
	industry := r.resolveIndustry(ctx, subject)
	symbols := r.resolvePeers(ctx, subject, industry)
	if len(symbols) == 0 {
		r.log.Info("No peers resolved", "subject", subject, "industry", industry)
		return peers.Ranking{}, nil
	}

	if len(symbols) > r.cfg.MaxPeers {
		symbols = symbols[:r.cfg.MaxPeers]
	}

	// Scatter: each candidate's fetch+score pipeline is independent and
	// read-only, results merge at a single join point below
	candidates := make([]peers.Candidate, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(idx int, sym string) {
			defer wg.Done()
			candidates[idx] = r.scoreCandidate(ctx, sym, industry)
		}(i, symbol)
	}
	wg.Wait()

	if ctx.Err() != nil {
		// Superseded request: discard, never merge stale results
		return peers.Ranking{}, ctx.Err()
	}

	ranking := make(peers.Ranking, 0, len(candidates))
	for _, c := range candidates {
		if c.AggregateSentiment > baseline {
			ranking = append(ranking, c)
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].AggregateSentiment != ranking[j].AggregateSentiment {
			return ranking[i].AggregateSentiment > ranking[j].AggregateSentiment
		}
		return ranking[i].Symbol < ranking[j].Symbol
	})

	r.log.Info("Peer ranking complete",
		"subject", subject,
		"industry", industry,
		"candidates", len(candidates),
		"above_baseline", len(ranking),
	)

	return ranking, nil
}

// resolveIndustry looks up the subject's industry; failure is non-fatal
func (r *Ranker) resolveIndustry(ctx context.Context, subject string) string {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()

	profile, err := r.profiles.GetProfile(ctx, subject)
	if err != nil || profile == nil || profile.Industry == "" {
		r.log.Warn("Profile lookup failed, defaulting industry", "subject", subject, "error", err)
		return "Unknown"
	}
	return profile.Industry
}

// resolvePeers asks the live peer provider first and falls back to the
// static industry table; the subject itself is always excluded
func (r *Ranker) resolvePeers(ctx context.Context, subject, industry string) []string {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()

	symbols, err := r.peerList.GetPeers(callCtx, subject)
	if err != nil {
		r.log.Warn("Peer provider failed, using static table", "subject", subject, "error", err)
		return r.fallback.PeersForIndustry(ctx, industry, subject)
	}

	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s != subject && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// scoreCandidate runs the fetch-score-average pipeline for one peer.
// Every failure path produces the same explicit insufficient-data entry.
func (r *Ranker) scoreCandidate(ctx context.Context, symbol, industry string) peers.Candidate {
	candidate := peers.Candidate{
		Symbol:      symbol,
		DisplayName: symbol,
		Industry:    industry,
	}

	if profile, err := r.profileWithTimeout(ctx, symbol); err == nil && profile != nil {
		if profile.Name != "" {
			candidate.DisplayName = profile.Name
		}
		if profile.Industry != "" {
			candidate.Industry = profile.Industry
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()

	to := time.Now()
	from := to.AddDate(0, 0, -r.cfg.NewsWindowDays)
	items, err := r.newsFeed.GetNews(callCtx, symbol, from, to)
	if err != nil {
		r.log.Warn("Peer news fetch failed", "symbol", symbol, "error", err)
		candidate.Insufficient = true
		return candidate
	}
	if len(items) > r.cfg.MaxHeadlines {
		items = items[:r.cfg.MaxHeadlines]
	}
	if len(items) == 0 {
		return candidate // no news is a legitimate zero, not a failure
	}

	scored, failed := r.scorer.ScoreAll(ctx, items)
	if failed == len(items) {
		candidate.Insufficient = true
		return candidate
	}

	candidate.AggregateSentiment = scoring.OverallSentiment(scored)
	return candidate
}

func (r *Ranker) profileWithTimeout(ctx context.Context, symbol string) (*peers.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()
	return r.profiles.GetProfile(ctx, symbol)
}
