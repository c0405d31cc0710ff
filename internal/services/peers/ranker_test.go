package peers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassandra/internal/domain/news"
	"cassandra/internal/domain/peers"
	"cassandra/internal/services/scoring"
	"cassandra/pkg/errors"
)

// Mock providers for testing

type mockProfileProvider struct {
	profiles map[string]*peers.Profile
	err      error
}

func (m *mockProfileProvider) GetProfile(ctx context.Context, symbol string) (*peers.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[symbol]; ok {
		return p, nil
	}
	return &peers.Profile{Symbol: symbol, Name: symbol, Industry: "Technology"}, nil
}

type mockPeerProvider struct {
	peers []string
	err   error
}

func (m *mockPeerProvider) GetPeers(ctx context.Context, symbol string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.peers, nil
}

type mockNewsProvider struct {
	bySymbol map[string][]news.Item
	errFor   map[string]error
}

func (m *mockNewsProvider) GetNews(ctx context.Context, symbol string, from, to time.Time) ([]news.Item, error) {
	if err, ok := m.errFor[symbol]; ok {
		return nil, err
	}
	return m.bySymbol[symbol], nil
}

// labelClassifier returns a fixed label per headline prefix
type labelClassifier struct{}

func (labelClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	switch text[0] {
	case '+':
		return "POSITIVE", 0.5, nil
	case '-':
		return "NEGATIVE", 0.5, nil
	default:
		return "NEUTRAL", 0.5, nil
	}
}

func headlines(texts ...string) []news.Item {
	items := make([]news.Item, len(texts))
	for i, text := range texts {
		items[i] = news.Item{Headline: text, PublishedAt: time.Now()}
	}
	return items
}

func newTestRanker(profiles peers.ProfileProvider, peerList peers.PeerProvider, feed news.Provider) *Ranker {
	scorer := scoring.NewService(labelClassifier{}, 2, time.Second)
	return NewRanker(profiles, peerList, peers.DefaultStaticPeerTable(), feed, scorer, RankerConfig{
		MaxPeers:       6,
		MaxHeadlines:   8,
		NewsWindowDays: 7,
		CallTimeout:    time.Second,
	})
}

func TestRank_FiltersAndSorts(t *testing.T) {
	// A and C tie above the baseline, B falls below it
	feed := &mockNewsProvider{bySymbol: map[string][]news.Item{
		"A": headlines("+up", "+up"),             // 0.5
		"B": headlines("+up", "+up", "-down", "~flat", "~flat"), // 0.1
		"C": headlines("+up"),                    // 0.5
	}}

	ranker := newTestRanker(
		&mockProfileProvider{},
		&mockPeerProvider{peers: []string{"A", "B", "C"}},
		feed,
	)

	ranking, err := ranker.Rank(context.Background(), "SUBJ", 0.2)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	// Equal aggregates break ties by symbol ascending
	assert.Equal(t, "A", ranking[0].Symbol)
	assert.Equal(t, "C", ranking[1].Symbol)
	assert.InDelta(t, 0.5, ranking[0].AggregateSentiment, 1e-9)
	assert.InDelta(t, 0.5, ranking[1].AggregateSentiment, 1e-9)
}

func TestRank_SubjectExcludedFromPeers(t *testing.T) {
	feed := &mockNewsProvider{bySymbol: map[string][]news.Item{
		"SUBJ": headlines("+up"),
		"A":    headlines("+up"),
	}}

	ranker := newTestRanker(
		&mockProfileProvider{},
		&mockPeerProvider{peers: []string{"SUBJ", "A"}},
		feed,
	)

	ranking, err := ranker.Rank(context.Background(), "SUBJ", -1)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, "A", ranking[0].Symbol)
}

func TestRank_PeerFanOutCapped(t *testing.T) {
	symbols := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"}
	bySymbol := make(map[string][]news.Item, len(symbols))
	for _, s := range symbols {
		bySymbol[s] = headlines("+up")
	}

	ranker := newTestRanker(
		&mockProfileProvider{},
		&mockPeerProvider{peers: symbols},
		&mockNewsProvider{bySymbol: bySymbol},
	)

	ranking, err := ranker.Rank(context.Background(), "SUBJ", -1)
	require.NoError(t, err)
	assert.Len(t, ranking, 6, "fan-out is capped at MaxPeers")
}

func TestRank_NewsFailureMarksInsufficient(t *testing.T) {
	feed := &mockNewsProvider{
		bySymbol: map[string][]news.Item{"A": headlines("+up")},
		errFor:   map[string]error{"B": errors.ErrUpstreamUnavailable},
	}

	ranker := newTestRanker(
		&mockProfileProvider{},
		&mockPeerProvider{peers: []string{"A", "B"}},
		feed,
	)

	// Baseline below zero keeps the insufficient candidate visible
	ranking, err := ranker.Rank(context.Background(), "SUBJ", -1)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	var b *peers.Candidate
	for i := range ranking {
		if ranking[i].Symbol == "B" {
			b = &ranking[i]
		}
	}
	require.NotNil(t, b)
	assert.True(t, b.Insufficient)
	assert.Equal(t, 0.0, b.AggregateSentiment, "insufficient candidates carry a fixed zero, not a guess")
}

func TestRank_NoNewsIsLegitimateZero(t *testing.T) {
	ranker := newTestRanker(
		&mockProfileProvider{},
		&mockPeerProvider{peers: []string{"A"}},
		&mockNewsProvider{bySymbol: map[string][]news.Item{}},
	)

	ranking, err := ranker.Rank(context.Background(), "SUBJ", -1)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.False(t, ranking[0].Insufficient)
	assert.Equal(t, 0.0, ranking[0].AggregateSentiment)
}

func TestRank_StaticFallbackWhenPeerProviderFails(t *testing.T) {
	profiles := &mockProfileProvider{profiles: map[string]*peers.Profile{
		"NVDA": {Symbol: "NVDA", Name: "NVIDIA", Industry: "Semiconductors"},
	}}
	feed := &mockNewsProvider{bySymbol: map[string][]news.Item{
		"AMD": headlines("+up"),
	}}

	ranker := newTestRanker(
		profiles,
		&mockPeerProvider{err: errors.ErrUpstreamUnavailable},
		feed,
	)

	ranking, err := ranker.Rank(context.Background(), "NVDA", 0.2)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, "AMD", ranking[0].Symbol)

	// Subject must not appear even via the static table
	for _, c := range ranking {
		assert.NotEqual(t, "NVDA", c.Symbol)
	}
}

func TestRank_TotalResolutionFailureYieldsEmptyRanking(t *testing.T) {
	ranker := newTestRanker(
		&mockProfileProvider{err: errors.ErrUpstreamUnavailable},
		&mockPeerProvider{err: errors.ErrUpstreamUnavailable},
		&mockNewsProvider{},
	)

	ranking, err := ranker.Rank(context.Background(), "SUBJ", 0)
	require.NoError(t, err, "an empty ranking is a result, not an error")
	assert.Empty(t, ranking)
}
