// Package proxy coordinates the result cache, in-flight request
// deduplication, and the pager behind the HTTP handler.
package proxy

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Flash5127/DU81-Proxy/pkg/cache"
	"github.com/Flash5127/DU81-Proxy/pkg/gamepass"
	"github.com/Flash5127/DU81-Proxy/pkg/logging"
)

// ErrMissingUserID is returned when the user id is empty after trimming.
var ErrMissingUserID = errors.New("missing userId")

var (
	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roproxy_coalesced_requests_total",
		Help: "Requests that joined an already in-flight traversal for the same key",
	})

	traversalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roproxy_traversals_total",
		Help: "Upstream traversals by outcome",
	}, []string{"outcome"})
)

// PassFetcher fetches the full normalized gamepass list for a user.
type PassFetcher interface {
	FetchAll(ctx context.Context, userID string) ([]gamepass.Gamepass, error)
}

// Service serves gamepass listings, deduplicating concurrent requests per
// user id and caching completed results.
type Service struct {
	fetcher PassFetcher
	store   cache.Store
	flight  singleflight.Group
	logger  zerolog.Logger
}

// NewService creates a service over the given fetcher and cache store.
func NewService(fetcher PassFetcher, store cache.Store) *Service {
	return &Service{
		fetcher: fetcher,
		store:   store,
		logger:  logging.NewLogger("proxy"),
	}
}

// GetGamepasses returns the normalized gamepass list for a user.
//
// A fresh cache entry is served without touching the network. Otherwise at
// most one traversal per user id runs at a time; concurrent callers for the
// same id share its outcome, success or failure, and the in-flight
// registration is cleared either way so a later request starts fresh.
func (s *Service) GetGamepasses(ctx context.Context, userID string) ([]gamepass.Gamepass, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	if records, err := s.store.Get(ctx, userID); err == nil {
		s.logger.Debug().
			Str("user_id", userID).
			Bool("cache_hit", true).
			Int("records", len(records)).
			Msg("Serving cached result")
		return records, nil
	}

	v, err, shared := s.flight.Do(userID, func() (any, error) {
		// The traversal is detached from the triggering request's context:
		// it runs to completion even if that request disconnects, since any
		// number of later callers may be waiting on it.
		fetchCtx := context.Background()

		records, err := s.fetcher.FetchAll(fetchCtx, userID)
		if err != nil {
			traversalsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		traversalsTotal.WithLabelValues("success").Inc()

		if putErr := s.store.Put(fetchCtx, userID, records); putErr != nil {
			s.logger.Warn().
				Err(putErr).
				Str("user_id", userID).
				Msg("Failed to cache result")
		}
		return records, nil
	})

	if shared {
		coalescedTotal.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]gamepass.Gamepass), nil
}
