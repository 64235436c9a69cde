// Package gamepass fetches and normalizes Roblox gamepass listings from the
// inconsistent upstream response shapes.
package gamepass

import (
	"encoding/json"
	"strconv"
)

// Gamepass is a normalized gamepass record.
type Gamepass struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// rawRecord is the minimal structural shape shared by the upstream record
// variants. The id lives under different keys depending on which API (and
// which API version) produced the page.
type rawRecord struct {
	ID           any    `json:"id"`
	GamePassID   any    `json:"gamePassId"`
	PassID       any    `json:"passId"`
	AssetID      any    `json:"assetId"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Price        any    `json:"price"`
	PriceInRobux any    `json:"priceInRobux"`
}

// normalizeRecord converts one raw upstream record into a Gamepass. Records
// without a coercible id are dropped. A missing name gets a synthesized
// placeholder and a missing or non-numeric price defaults to 0.
func normalizeRecord(raw json.RawMessage) (Gamepass, bool) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Gamepass{}, false
	}

	id, ok := firstNumeric(rec.ID, rec.GamePassID, rec.PassID, rec.AssetID)
	if !ok {
		return Gamepass{}, false
	}

	name := rec.Name
	if name == "" {
		name = rec.DisplayName
	}
	if name == "" {
		name = "Gamepass " + strconv.FormatInt(id, 10)
	}

	price, ok := coerceInt(rec.Price)
	if !ok {
		price, _ = coerceInt(rec.PriceInRobux)
	}
	if price < 0 {
		price = 0
	}

	return Gamepass{ID: id, Name: name, Price: price}, true
}

// firstNumeric returns the first coercible value among the candidates.
func firstNumeric(candidates ...any) (int64, bool) {
	for _, v := range candidates {
		if n, ok := coerceInt(v); ok {
			return n, true
		}
	}
	return 0, false
}

// coerceInt accepts JSON numbers and numeric strings.
func coerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
