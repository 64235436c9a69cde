package gamepass

import (
	"encoding/json"
	"testing"
)

func TestNormalizeRecord(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Gamepass
		wantOK  bool
	}{
		{
			name:   "complete record",
			raw:    `{"id": 55, "name": "VIP", "price": 100}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 100},
			wantOK: true,
		},
		{
			name:   "assetId alias",
			raw:    `{"assetId": 55, "name": "VIP", "price": 100}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 100},
			wantOK: true,
		},
		{
			name:   "gamePassId alias",
			raw:    `{"gamePassId": 7, "name": "Speed"}`,
			want:   Gamepass{ID: 7, Name: "Speed", Price: 0},
			wantOK: true,
		},
		{
			name:   "passId alias",
			raw:    `{"passId": 9}`,
			want:   Gamepass{ID: 9, Name: "Gamepass 9", Price: 0},
			wantOK: true,
		},
		{
			name:   "id preferred over aliases",
			raw:    `{"id": 1, "assetId": 2, "name": "X"}`,
			want:   Gamepass{ID: 1, Name: "X", Price: 0},
			wantOK: true,
		},
		{
			name:   "string id",
			raw:    `{"id": "55", "name": "VIP"}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 0},
			wantOK: true,
		},
		{
			name:   "missing name synthesizes placeholder",
			raw:    `{"id": 55, "price": 10}`,
			want:   Gamepass{ID: 55, Name: "Gamepass 55", Price: 10},
			wantOK: true,
		},
		{
			name:   "displayName used before placeholder",
			raw:    `{"id": 55, "displayName": "Display"}`,
			want:   Gamepass{ID: 55, Name: "Display", Price: 0},
			wantOK: true,
		},
		{
			name:   "missing price defaults to zero",
			raw:    `{"id": 55, "name": "VIP"}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 0},
			wantOK: true,
		},
		{
			name:   "string price coerced",
			raw:    `{"id": 55, "name": "VIP", "price": "100"}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 100},
			wantOK: true,
		},
		{
			name:   "non-numeric price defaults to zero",
			raw:    `{"id": 55, "name": "VIP", "price": "free"}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 0},
			wantOK: true,
		},
		{
			name:   "priceInRobux fallback",
			raw:    `{"id": 55, "name": "VIP", "priceInRobux": 250}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 250},
			wantOK: true,
		},
		{
			name:   "negative price clamped to zero",
			raw:    `{"id": 55, "name": "VIP", "price": -5}`,
			want:   Gamepass{ID: 55, Name: "VIP", Price: 0},
			wantOK: true,
		},
		{
			name:   "record without id dropped",
			raw:    `{"name": "VIP", "price": 100}`,
			wantOK: false,
		},
		{
			name:   "non-numeric id dropped",
			raw:    `{"id": "abc", "name": "VIP"}`,
			wantOK: false,
		},
		{
			name:   "null id dropped",
			raw:    `{"id": null, "name": "VIP"}`,
			wantOK: false,
		},
		{
			name:   "non-object record dropped",
			raw:    `"not a record"`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeRecord(json.RawMessage(tt.raw))

			if ok != tt.wantOK {
				t.Fatalf("normalizeRecord ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("normalizeRecord = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int64
		wantOK bool
	}{
		{name: "float", value: float64(42), want: 42, wantOK: true},
		{name: "integer string", value: "42", want: 42, wantOK: true},
		{name: "decimal string", value: "42.9", want: 42, wantOK: true},
		{name: "non-numeric string", value: "robux", wantOK: false},
		{name: "nil", value: nil, wantOK: false},
		{name: "bool", value: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceInt(tt.value)

			if ok != tt.wantOK {
				t.Fatalf("coerceInt(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("coerceInt(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
