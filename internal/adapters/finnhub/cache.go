package finnhub

import (
	"context"
	"time"

	"cassandra/internal/adapters/config"
	"cassandra/internal/adapters/redis"
	"cassandra/internal/domain/market"
	"cassandra/internal/domain/peers"
	"cassandra/pkg/logger"
)

// CachedClient is a read-through cache over the Finnhub client for the
// endpoints that tolerate staleness. Quotes get a short TTL; profiles and
// peer lists change rarely and get long ones. News and candles are never
// cached: they are always fetched fresh for the requested window.
type CachedClient struct {
	*Client
	cache      *redis.Client
	quoteTTL   time.Duration
	profileTTL time.Duration
	peersTTL   time.Duration
	log        *logger.Logger
}

// NewCachedClient wraps a Finnhub client with a Redis read-through cache
func NewCachedClient(client *Client, cache *redis.Client, cfg config.FinnhubConfig) *CachedClient {
	return &CachedClient{
		Client:     client,
		cache:      cache,
		quoteTTL:   cfg.QuoteCacheTTL,
		profileTTL: cfg.ProfileCacheTTL,
		peersTTL:   cfg.PeersCacheTTL,
		log:        logger.Get().With("component", "finnhub_cache"),
	}
}

// GetQuote serves from cache when fresh, otherwise fetches and stores
func (c *CachedClient) GetQuote(ctx context.Context, symbol string) (*market.Quote, error) {
	key := "quote:" + symbol

	var cached market.Quote
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !redis.IsMiss(err) {
		c.log.Debug("Quote cache read failed", "symbol", symbol, "error", err)
	}

	quote, err := c.Client.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, quote, c.quoteTTL); err != nil {
		c.log.Debug("Quote cache write failed", "symbol", symbol, "error", err)
	}
	return quote, nil
}

// GetProfile serves from cache when present, otherwise fetches and stores
func (c *CachedClient) GetProfile(ctx context.Context, symbol string) (*peers.Profile, error) {
	key := "profile:" + symbol

	var cached peers.Profile
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !redis.IsMiss(err) {
		c.log.Debug("Profile cache read failed", "symbol", symbol, "error", err)
	}

	profile, err := c.Client.GetProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, profile, c.profileTTL); err != nil {
		c.log.Debug("Profile cache write failed", "symbol", symbol, "error", err)
	}
	return profile, nil
}

// GetPeers serves from cache when present, otherwise fetches and stores
func (c *CachedClient) GetPeers(ctx context.Context, symbol string) ([]string, error) {
	key := "peers:" + symbol

	var cached []string
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !redis.IsMiss(err) {
		c.log.Debug("Peers cache read failed", "symbol", symbol, "error", err)
	}

	symbols, err := c.Client.GetPeers(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, symbols, c.peersTTL); err != nil {
		c.log.Debug("Peers cache write failed", "symbol", symbol, "error", err)
	}
	return symbols, nil
}
