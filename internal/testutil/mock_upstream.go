// Package testutil provides testing utilities for the gamepass proxy.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior of a mocked upstream endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPage is one page of a paginated gamepass response. Data is a raw JSON
// array of records.
type MockPage struct {
	Data string
}

// MockUpstream is a configurable stand-in for the Roblox web APIs.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	requestCount      int
	pathCounts        map[string]int
	lastRequestHeader http.Header
}

// NewMockUpstream creates a mock upstream server. Paths without a configured
// handler answer with an empty gamepass page.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprint(w, `{"data":[],"nextPageCursor":null}`)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockUpstream) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			fmt.Fprint(w, resp.Body)
		}
	})
}

// GamepassPath returns the primary gamepass endpoint path for a user.
func GamepassPath(userID string) string {
	return "/game-passes/v1/users/" + userID + "/game-passes"
}

// InventoryPath returns the fallback inventory endpoint path for a user.
func InventoryPath(userID string) string {
	return "/v1/users/" + userID + "/items/GamePass"
}

// SetGamepassPages wires the paginated gamepass endpoint for a user with a
// chain of cursor-linked pages. Page n hands out cursor "c<n+1>"; the last
// page returns a null cursor.
func (m *MockUpstream) SetGamepassPages(userID string, pages []MockPage) {
	m.SetHandler(GamepassPath(userID), func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if c := r.URL.Query().Get("cursor"); c != "" {
			if n, err := strconv.Atoi(strings.TrimPrefix(c, "c")); err == nil && n < len(pages) {
				idx = n
			}
		}

		next := "null"
		if idx < len(pages)-1 {
			next = fmt.Sprintf("%q", "c"+strconv.Itoa(idx+1))
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprintf(w, `{"data":%s,"nextPageCursor":%s}`, pages[idx].Data, next)
	})
}

// SetInventoryResponse configures the fallback inventory endpoint for a user.
func (m *MockUpstream) SetInventoryResponse(userID string, resp MockResponse) {
	m.SetResponse(InventoryPath(userID), resp)
}

// GetRequestCount returns the total number of requests made to the server.
func (m *MockUpstream) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to a specific path.
func (m *MockUpstream) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockUpstream) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// NewRateLimitResponse creates a 429 response with an optional Retry-After
// hint in seconds (empty string omits the header).
func NewRateLimitResponse(retryAfter string) MockResponse {
	resp := MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"errors":[{"code":429,"message":"TooManyRequests"}]}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
	if retryAfter != "" {
		resp.Headers["Retry-After"] = retryAfter
	}
	return resp
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors":[{"code":500,"message":"InternalServerError"}]}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates the upstream's "empty result expressed as 404"
// response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"errors":[{"code":404,"message":"NotFound"}]}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
