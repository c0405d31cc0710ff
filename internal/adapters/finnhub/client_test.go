package finnhub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassandra/internal/adapters/config"
	"cassandra/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.FinnhubConfig{
		APIKey:             "test-key",
		BaseURL:            server.URL,
		RequestTimeout:     2 * time.Second,
		RateLimitPerMinute: 6000,
	})
	return client, server
}

func TestGetQuote(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"c": 200.5, "h": 202.0, "l": 198.0, "o": 199.0, "pc": 198.5, "t": 1756500000,
		})
	})

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 200.5, quote.Current)
	assert.Equal(t, 198.5, quote.PreviousClose)
}

func TestGetQuote_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
}

func TestGetDailyCloses(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/candle", r.URL.Path)
		assert.Equal(t, "D", r.URL.Query().Get("resolution"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"s": "ok",
			"c": []float64{100, 101.5},
			"t": []int64{1756400000, 1756486400},
		})
	})

	candles, err := client.GetDailyCloses(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 100.0, candles[0].Close)
	assert.Equal(t, 101.5, candles[1].Close)
}

func TestGetDailyCloses_NoData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"s": "no_data"})
	})

	candles, err := client.GetDailyCloses(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	require.NoError(t, err, "no_data is a legitimate empty result")
	assert.Empty(t, candles)
}

func TestGetDailyCloses_MismatchedArrays(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"s": "ok",
			"c": []float64{100},
			"t": []int64{1756400000, 1756486400},
		})
	})

	_, err := client.GetDailyCloses(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	assert.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
}

func TestGetNews(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)

		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"datetime": 1756400000, "headline": "Earnings beat", "source": "wire", "url": "https://example.com/1"},
			{"datetime": 1756403600, "headline": "", "source": "wire", "url": "https://example.com/2"},
			{"datetime": 1756407200, "headline": "Guidance raised", "source": "wire", "url": "https://example.com/3"},
		})
	})

	items, err := client.GetNews(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7), time.Now())
	require.NoError(t, err)
	require.Len(t, items, 2, "empty headlines are dropped")
	assert.Equal(t, "Earnings beat", items[0].Headline)
	assert.Nil(t, items[0].Sentiment, "provider items arrive unscored")
}

func TestGetProfile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/profile2", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"name": "Apple Inc", "finnhubIndustry": "Technology",
		})
	})

	profile, err := client.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", profile.Name)
	assert.Equal(t, "Technology", profile.Industry)
}

func TestGetPeers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/peers", r.URL.Path)

		json.NewEncoder(w).Encode([]string{"MSFT", "GOOGL", "META"})
	})

	symbols, err := client.GetPeers(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "GOOGL", "META"}, symbols)
}

func TestGet_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
}
