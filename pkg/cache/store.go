// Package cache stores normalized gamepass results per request key with a
// time-to-live, so repeated requests inside the window never touch the
// network.
package cache

import (
	"context"
	"errors"

	"github.com/Flash5127/DU81-Proxy/pkg/gamepass"
)

// ErrCacheMiss indicates the key is absent or its entry has expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is the result cache contract.
//
// Get returns ErrCacheMiss for absent or expired entries. Put starts a fresh
// TTL window from "now" and replaces any prior entry for the key entirely.
type Store interface {
	Get(ctx context.Context, key string) ([]gamepass.Gamepass, error)
	Put(ctx context.Context, key string, records []gamepass.Gamepass) error
}
