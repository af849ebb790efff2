// Package testutil provides testing utilities for the Reddit client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// TokenPath is the OAuth token endpoint path the mock serves.
const TokenPath = "/api/v1/access_token"

// MockResponse defines the behavior for a mock Reddit endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockReddit is a configurable mock Reddit API server for testing. It
// doubles as the token endpoint so one server covers authenticated flows.
type MockReddit struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	TokenCount        int
	LastRequestHeader http.Header
	Queries           []string
}

// NewMockReddit creates a new mock Reddit server.
func NewMockReddit() *MockReddit {
	mock := &MockReddit{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		if r.URL.Path == TokenPath {
			mock.TokenCount++
		} else {
			mock.RequestCount++
			mock.Queries = append(mock.Queries, r.URL.RawQuery)
		}
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		if r.URL.Path == TokenPath {
			mock.defaultTokenHandler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockReddit) URL() string {
	return m.server.URL
}

// TokenURL returns the mock token endpoint URL.
func (m *MockReddit) TokenURL() string {
	return m.server.URL + TokenPath
}

// Close shuts down the mock server.
func (m *MockReddit) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockReddit) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.TokenCount = 0
	m.LastRequestHeader = nil
	m.Queries = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockReddit) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockReddit) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetListingPages serves a paginated listing on path. Pages are keyed by the
// "after" cursor the request carries; the first page sits under the empty key.
func (m *MockReddit) SetListingPages(path string, pages map[string]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after")
		page, ok := pages[after]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"message": "no page for cursor %q", "error": 404}`, after)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(page))
	})
}

// GetRequestCount returns the number of API requests made to the server,
// token requests excluded.
func (m *MockReddit) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetTokenCount returns the number of token requests.
func (m *MockReddit) GetTokenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TokenCount
}

// LastQuery returns the raw query of the most recent API request.
func (m *MockReddit) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Queries) == 0 {
		return ""
	}
	return m.Queries[len(m.Queries)-1]
}

// defaultHandler serves an empty listing.
func (m *MockReddit) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ListingPage("")))
}

// defaultTokenHandler issues a long-lived bearer token.
func (m *MockReddit) defaultTokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(TokenResponse("mock-token", 3600)))
}

// TokenResponse builds a token endpoint response body.
func TokenResponse(token string, expiresIn int) string {
	return fmt.Sprintf(`{"access_token": %q, "token_type": "bearer", "expires_in": %d, "scope": "*"}`, token, expiresIn)
}

// ListingPage builds a listing envelope from child JSON fragments. An empty
// after renders as null, signalling the final page.
func ListingPage(after string, children ...string) string {
	afterJSON := "null"
	if after != "" {
		afterJSON = fmt.Sprintf("%q", after)
	}
	return fmt.Sprintf(`{"kind": "Listing", "data": {"after": %s, "dist": %d, "children": [%s]}}`,
		afterJSON, len(children), strings.Join(children, ","))
}

// CommentChild builds a t1 child for a listing page.
func CommentChild(id, author, body string) string {
	return fmt.Sprintf(`{"kind": "t1", "data": {"id": %q, "name": "t1_%s", "author": %q, "body": %q, "created_utc": 1700000000}}`,
		id, id, author, body)
}

// PostChild builds a t3 child for a listing page.
func PostChild(id, author, title string) string {
	return fmt.Sprintf(`{"kind": "t3", "data": {"id": %q, "name": "t3_%s", "author": %q, "title": %q, "created_utc": 1700000000}}`,
		id, id, author, title)
}

// SubredditChild builds a t5 child for a listing page.
func SubredditChild(id, displayName string) string {
	return fmt.Sprintf(`{"kind": "t5", "data": {"id": %q, "name": "t5_%s", "display_name": %q}}`,
		id, id, displayName)
}

// AccountBody builds a t2 account response body.
func AccountBody(name string, linkKarma, commentKarma int) string {
	return fmt.Sprintf(`{"kind": "t2", "data": {"id": "acc_%s", "name": %q, "link_karma": %d, "comment_karma": %d, "created_utc": 1500000000}}`,
		name, name, linkKarma, commentKarma)
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Too Many Requests", "error": 429}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "Internal Server Error", "error": 500}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 response in Reddit's error shape.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message": "Not Found", "error": 404}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
