package gamepass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Flash5127/DU81-Proxy/pkg/logging"
	"github.com/Flash5127/DU81-Proxy/pkg/upstream"
)

// Fetcher performs one logical GET against an upstream endpoint.
type Fetcher interface {
	GetJSON(ctx context.Context, url string) (*upstream.Payload, error)
}

// PagerConfig holds the pager configuration.
type PagerConfig struct {
	// GamePassesBaseURL is the primary paginated gamepass API.
	GamePassesBaseURL string

	// InventoryBaseURL is the fallback inventory API, consulted once when the
	// primary traversal yields nothing.
	InventoryBaseURL string

	// PageLimit is the requested page size.
	PageLimit int
}

// DefaultPagerConfig returns the production endpoints and page size.
func DefaultPagerConfig() PagerConfig {
	return PagerConfig{
		GamePassesBaseURL: "https://apis.roblox.com",
		InventoryBaseURL:  "https://inventory.roblox.com",
		PageLimit:         100,
	}
}

// Pager walks the paginated gamepass endpoint cursor by cursor and
// accumulates normalized records.
type Pager struct {
	fetcher Fetcher
	config  PagerConfig
	logger  zerolog.Logger
}

// NewPager creates a pager. Zero config fields fall back to defaults.
func NewPager(fetcher Fetcher, cfg PagerConfig) *Pager {
	def := DefaultPagerConfig()
	if cfg.GamePassesBaseURL == "" {
		cfg.GamePassesBaseURL = def.GamePassesBaseURL
	}
	if cfg.InventoryBaseURL == "" {
		cfg.InventoryBaseURL = def.InventoryBaseURL
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = def.PageLimit
	}

	return &Pager{
		fetcher: fetcher,
		config:  cfg,
		logger:  logging.NewLogger("pager"),
	}
}

// FetchAll fetches every page of gamepasses for a user.
//
// A transport failure aborts the traversal; pages collected so far are
// discarded so callers never see silently truncated results. A legitimately
// empty primary result triggers one best-effort query of the inventory
// fallback, whose failures are logged and swallowed.
func (p *Pager) FetchAll(ctx context.Context, userID string) ([]Gamepass, error) {
	var all []Gamepass
	cursor := ""
	pages := 0

	for {
		payload, err := p.fetcher.GetJSON(ctx, p.gamePassesURL(userID, cursor))
		if err != nil {
			return nil, fmt.Errorf("fetching gamepass page: %w", err)
		}

		records, next := decodePage(payload)
		all = append(all, records...)
		pages++

		// An absent cursor ends the traversal. An empty page does too, even
		// with a cursor present, so a malformed upstream response cannot loop
		// forever.
		if next == "" || len(records) == 0 {
			break
		}
		cursor = next
	}

	p.logger.Debug().
		Str("user_id", userID).
		Int("pages", pages).
		Int("records", len(all)).
		Msg("Primary traversal complete")

	if len(all) == 0 {
		return p.inventoryFallback(ctx, userID), nil
	}
	return all, nil
}

// inventoryFallback makes a single best-effort query against the inventory
// API. Its failures never surface; the result is simply empty.
func (p *Pager) inventoryFallback(ctx context.Context, userID string) []Gamepass {
	payload, err := p.fetcher.GetJSON(ctx, p.inventoryURL(userID))
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("Inventory fallback failed")
		return nil
	}

	records, _ := decodePage(payload)
	p.logger.Debug().
		Str("user_id", userID).
		Int("records", len(records)).
		Msg("Inventory fallback complete")
	return records
}

func (p *Pager) gamePassesURL(userID, cursor string) string {
	u := fmt.Sprintf("%s/game-passes/v1/users/%s/game-passes?count=%d",
		p.config.GamePassesBaseURL, url.PathEscape(userID), p.config.PageLimit)
	if cursor != "" {
		u += "&cursor=" + url.QueryEscape(cursor)
	}
	return u
}

func (p *Pager) inventoryURL(userID string) string {
	return fmt.Sprintf("%s/v1/users/%s/items/GamePass?limit=%d",
		p.config.InventoryBaseURL, url.PathEscape(userID), p.config.PageLimit)
}

// pageEnvelope is the documented object shape of a paginated response.
type pageEnvelope struct {
	Data           []json.RawMessage `json:"data"`
	NextPageCursor *string           `json:"nextPageCursor"`
}

// decodePage extracts normalized records and the continuation cursor from a
// page. The upstream answers either with the {data, nextPageCursor} envelope
// or with a bare array; anything else counts as zero usable records.
func decodePage(payload *upstream.Payload) ([]Gamepass, string) {
	if payload == nil || len(payload.JSON) == 0 {
		return nil, ""
	}

	var rawRecords []json.RawMessage
	var next string

	// The transport trims leading whitespace, so the first byte tags the shape.
	switch payload.JSON[0] {
	case '[':
		if err := json.Unmarshal(payload.JSON, &rawRecords); err != nil {
			return nil, ""
		}
	case '{':
		var env pageEnvelope
		if err := json.Unmarshal(payload.JSON, &env); err != nil {
			return nil, ""
		}
		rawRecords = env.Data
		if env.NextPageCursor != nil {
			next = *env.NextPageCursor
		}
	default:
		return nil, ""
	}

	records := make([]Gamepass, 0, len(rawRecords))
	for _, raw := range rawRecords {
		if rec, ok := normalizeRecord(raw); ok {
			records = append(records, rec)
		}
	}
	return records, next
}
