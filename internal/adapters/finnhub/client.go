package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"cassandra/internal/adapters/config"
	"cassandra/internal/domain/market"
	"cassandra/internal/domain/news"
	"cassandra/internal/domain/peers"
	"cassandra/internal/metrics"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Compile-time checks
var (
	_ market.QuoteProvider  = (*Client)(nil)
	_ market.CandleProvider = (*Client)(nil)
	_ news.Provider         = (*Client)(nil)
	_ peers.ProfileProvider = (*Client)(nil)
	_ peers.PeerProvider    = (*Client)(nil)
)

// Client talks to the Finnhub REST API. It is the single upstream for
// quotes, candles, company news, profiles and peer lists.
// All failures surface as ErrUpstreamUnavailable so callers can apply a
// uniform fallback policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a new Finnhub client
func NewClient(cfg config.FinnhubConfig) *Client {
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 50
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		log:     logger.Get().With("component", "finnhub"),
	}
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// GetQuote fetches the current quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*market.Quote, error) {
	var resp quoteResponse
	err := c.get(ctx, "quote", url.Values{"symbol": {symbol}}, &resp)
	if err != nil {
		return nil, err
	}

	return &market.Quote{
		Symbol:        symbol,
		Current:       resp.Current,
		High:          resp.High,
		Low:           resp.Low,
		Open:          resp.Open,
		PreviousClose: resp.PreviousClose,
		Timestamp:     time.Unix(resp.Timestamp, 0),
	}, nil
}

type candleResponse struct {
	Closes     []float64 `json:"c"`
	Timestamps []int64   `json:"t"`
	Status     string    `json:"s"`
}

// GetDailyCloses fetches daily close candles for the window.
// A "no_data" status is a legitimate empty result, not an error.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]market.Candle, error) {
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {fmt.Sprintf("%d", from.Unix())},
		"to":         {fmt.Sprintf("%d", to.Unix())},
	}

	var resp candleResponse
	if err := c.get(ctx, "stock/candle", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status == "no_data" {
		return nil, nil
	}
	if len(resp.Closes) != len(resp.Timestamps) {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "candle response mismatch: %d closes, %d timestamps",
			len(resp.Closes), len(resp.Timestamps))
	}

	candles := make([]market.Candle, len(resp.Closes))
	for i := range resp.Closes {
		candles[i] = market.Candle{
			Date:  time.Unix(resp.Timestamps[i], 0),
			Close: resp.Closes[i],
		}
	}
	return candles, nil
}

type newsItemResponse struct {
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// GetNews fetches company news for the window
func (c *Client) GetNews(ctx context.Context, symbol string, from, to time.Time) ([]news.Item, error) {
	params := url.Values{
		"symbol": {symbol},
		"from":   {from.Format("2006-01-02")},
		"to":     {to.Format("2006-01-02")},
	}

	var resp []newsItemResponse
	if err := c.get(ctx, "company-news", params, &resp); err != nil {
		return nil, err
	}

	items := make([]news.Item, 0, len(resp))
	for _, raw := range resp {
		if raw.Headline == "" {
			continue
		}
		items = append(items, news.Item{
			PublishedAt: time.Unix(raw.Datetime, 0),
			Headline:    raw.Headline,
			Source:      raw.Source,
			URL:         raw.URL,
		})
	}
	return items, nil
}

type profileResponse struct {
	Name     string `json:"name"`
	Industry string `json:"finnhubIndustry"`
}

// GetProfile fetches the company profile for a symbol
func (c *Client) GetProfile(ctx context.Context, symbol string) (*peers.Profile, error) {
	var resp profileResponse
	if err := c.get(ctx, "stock/profile2", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	return &peers.Profile{
		Symbol:   symbol,
		Name:     resp.Name,
		Industry: resp.Industry,
	}, nil
}

// GetPeers fetches the peer symbol list for a symbol
func (c *Client) GetPeers(ctx context.Context, symbol string) ([]string, error) {
	var symbols []string
	if err := c.get(ctx, "stock/peers", url.Values{"symbol": {symbol}}, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

// get performs a rate-limited GET against an endpoint and decodes JSON
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrUpstreamUnavailable, err.Error())
	}

	params.Set("token", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderLatency.WithLabelValues("finnhub", endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("finnhub", endpoint, "error").Inc()
		return errors.Wrapf(errors.ErrUpstreamUnavailable, "%s: %v", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCalls.WithLabelValues("finnhub", endpoint, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return errors.Wrapf(errors.ErrUpstreamUnavailable, "%s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.ProviderCalls.WithLabelValues("finnhub", endpoint, "error").Inc()
		return errors.Wrapf(errors.ErrUpstreamUnavailable, "%s: failed to decode response: %v", endpoint, err)
	}

	metrics.ProviderCalls.WithLabelValues("finnhub", endpoint, "success").Inc()
	return nil
}
