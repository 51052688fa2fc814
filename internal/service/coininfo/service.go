package coininfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"VolPulse/internal/domain/models"
	drepo "VolPulse/internal/domain/repository"
	"VolPulse/pkg/cache"
	httpc "VolPulse/pkg/http"
	"VolPulse/pkg/logger"
)

// Service resolves display metadata (full name, logo) for symbols from
// an exchange info endpoint, with a cache in front.
type Service struct {
	cache   cache.Service
	client  *httpc.Client
	infoURL string
	ttl     time.Duration
	log     *logger.Logger
}

// Option configures Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithTTL sets cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// New creates a metadata lookup service backed by the given cache.
func New(c cache.Service, client *httpc.Client, infoURL string, opts ...Option) drepo.CoinInfo {
	s := &Service{
		cache:   c,
		client:  client,
		infoURL: infoURL,
		ttl:     time.Hour,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns metadata for symbol, fetching and caching on miss.
func (s *Service) Lookup(ctx context.Context, symbol string) (*models.CoinMeta, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("coininfo: empty symbol")
	}

	key := "coininfo:" + symbol
	var meta models.CoinMeta
	if err := s.cache.Get(ctx, key, &meta); err == nil {
		return &meta, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("coininfo cache read failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}

	fetched, err := s.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, fetched, s.ttl); err != nil {
		s.log.Warn("coininfo cache write failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}
	return fetched, nil
}

func (s *Service) fetch(ctx context.Context, symbol string) (*models.CoinMeta, error) {
	var meta models.CoinMeta
	err := s.client.SendAndParse(ctx, &httpc.RequestOptions{
		Method:      http.MethodGet,
		URL:         s.infoURL,
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &meta)
	if err != nil {
		return nil, fmt.Errorf("coininfo fetch %s: %w", symbol, err)
	}
	if meta.Symbol == "" {
		meta.Symbol = symbol
	}
	return &meta, nil
}
