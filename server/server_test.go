// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	badgercache "github.com/poiesic/searchdeck/cache/badger"
	"github.com/poiesic/searchdeck/core"
	"github.com/poiesic/searchdeck/ratelimit"
	"github.com/poiesic/searchdeck/searxng"
	"github.com/poiesic/searchdeck/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUpstream records calls and serves canned results.
type stubUpstream struct {
	mu        sync.Mutex
	calls     int
	lastLimit int
	results   []core.SearchResult
	err       error
}

func (u *stubUpstream) FetchResults(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.lastLimit = limit
	if u.err != nil {
		return nil, u.err
	}
	return u.results, nil
}

func (u *stubUpstream) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// reverseRanker reverses the input so tests can tell ranked output from
// upstream order.
type reverseRanker struct{}

func (reverseRanker) Rank(ctx context.Context, query string, results []core.SearchResult) ([]core.SearchResult, error) {
	ranked := make([]core.SearchResult, len(results))
	for i, result := range results {
		ranked[len(results)-1-i] = result
	}
	return ranked, nil
}

type failingRanker struct{}

func (failingRanker) Rank(ctx context.Context, query string, results []core.SearchResult) ([]core.SearchResult, error) {
	return nil, errors.New("embedding backend down")
}

func testResults() []core.SearchResult {
	return []core.SearchResult{
		{Title: "First", Content: "first content", URL: "https://first.example"},
		{Title: "Second", Content: "second content", URL: "https://second.example"},
	}
}

// newTestAuthority mints an authority in a temp dir along with a valid
// client credential for its secret.
func newTestAuthority(t *testing.T) (*token.Authority, string) {
	t.Helper()

	authority, err := token.NewAuthority(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	secret, err := authority.Token()
	require.NoError(t, err)

	credential, err := token.EncodeSecret(secret)
	require.NoError(t, err)

	return authority, credential
}

func newTestLimiter(t *testing.T, points int) *ratelimit.Limiter {
	t.Helper()
	limiter, err := ratelimit.NewLimiter(points, time.Minute)
	require.NoError(t, err)
	return limiter
}

func newRequest(t *testing.T, remoteAddr, forwardedFor string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/search?q=x", nil)
	r.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		r.Header.Set("X-Forwarded-For", forwardedFor)
	}
	return r
}

func searchURL(credential, query string, extra url.Values) string {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if credential != "" {
		params.Set("token", credential)
	}
	for key, values := range extra {
		for _, value := range values {
			params.Add(key, value)
		}
	}
	return "/search?" + params.Encode()
}

func doSearch(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func decodeResults(t *testing.T, recorder *httptest.ResponseRecorder) []core.SearchResult {
	t.Helper()
	var results []core.SearchResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &results))
	return results
}

func TestNewValidation(t *testing.T) {
	authority, _ := newTestAuthority(t)
	limiter := newTestLimiter(t, 10)
	upstream := &stubUpstream{}

	tests := []struct {
		name string
		err  error
		run  func() (*Server, error)
	}{
		{"nil authority", ErrAuthorityRequired, func() (*Server, error) {
			return New(nil, limiter, upstream, reverseRanker{})
		}},
		{"nil limiter", ErrLimiterRequired, func() (*Server, error) {
			return New(authority, nil, upstream, reverseRanker{})
		}},
		{"nil upstream", ErrUpstreamRequired, func() (*Server, error) {
			return New(authority, limiter, nil, reverseRanker{})
		}},
		{"nil ranker", ErrRankerRequired, func() (*Server, error) {
			return New(authority, limiter, upstream, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	authority, credential := newTestAuthority(t)
	s, err := New(authority, newTestLimiter(t, 10), &stubUpstream{}, reverseRanker{})
	require.NoError(t, err)

	recorder := doSearch(t, s, searchURL(credential, "", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSearchRequiresValidCredential(t *testing.T) {
	authority, _ := newTestAuthority(t)
	secret, err := authority.Token()
	require.NoError(t, err)

	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{})
	require.NoError(t, err)

	otherCredential, err := token.EncodeSecret("some-other-secret")
	require.NoError(t, err)

	tests := []struct {
		name       string
		credential string
	}{
		{"missing token", ""},
		{"credential for a different secret", otherCredential},
		{"raw secret instead of a derived credential", secret},
		{"garbage", "not-a-phc-string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doSearch(t, s, searchURL(tt.credential, "golang", nil))
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}

	assert.Zero(t, upstream.callCount(), "rejected requests must not reach the upstream")
}

func TestSearchReturnsRankedResults(t *testing.T) {
	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{})
	require.NoError(t, err)

	recorder := doSearch(t, s, searchURL(credential, "golang", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	results := decodeResults(t, recorder)
	require.Len(t, results, 2)
	assert.Equal(t, "https://second.example", results[0].URL)
	assert.Equal(t, "https://first.example", results[1].URL)
}

func TestSearchLimitParsing(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"positive", "2", 2},
		{"zero is ignored", "0", 0},
		{"negative is ignored", "-3", 0},
		{"non-numeric is ignored", "abc", 0},
		{"absent", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authority, credential := newTestAuthority(t)
			upstream := &stubUpstream{results: testResults()}
			s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{})
			require.NoError(t, err)

			extra := url.Values{}
			if tt.raw != "" {
				extra.Set("limit", tt.raw)
			}

			recorder := doSearch(t, s, searchURL(credential, "golang", extra))
			require.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.expected, upstream.lastLimit)
		})
	}
}

func TestSearchRateLimit(t *testing.T) {
	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 3), upstream, reverseRanker{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		recorder := doSearch(t, s, searchURL(credential, fmt.Sprintf("query-%d", i), nil))
		require.Equal(t, http.StatusOK, recorder.Code, "request %d within budget", i+1)
	}

	recorder := doSearch(t, s, searchURL(credential, "one too many", nil))
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

	// A different credential for the same secret is a separate identity
	// with its own untouched budget.
	secret, err := authority.Token()
	require.NoError(t, err)
	otherCredential, err := token.EncodeSecret(secret)
	require.NoError(t, err)
	require.NotEqual(t, credential, otherCredential)

	recorder = doSearch(t, s, searchURL(otherCredential, "golang", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSearchUpstreamFailureDegrades(t *testing.T) {
	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{err: errors.New("searxng unreachable")}
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{})
	require.NoError(t, err)

	recorder := doSearch(t, s, searchURL(credential, "golang", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", strings.TrimSpace(recorder.Body.String()))
}

func TestSearchRankerFailureServesUpstreamOrder(t *testing.T) {
	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 10), upstream, failingRanker{})
	require.NoError(t, err)

	recorder := doSearch(t, s, searchURL(credential, "golang", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	results := decodeResults(t, recorder)
	require.Len(t, results, 2)
	assert.Equal(t, "https://first.example", results[0].URL)
	assert.Equal(t, "https://second.example", results[1].URL)
}

func TestSearchServesRepeatQueriesFromCache(t *testing.T) {
	resultCache, err := badgercache.NewMemoryCache()
	require.NoError(t, err)
	defer resultCache.Close()

	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{}, WithCache(resultCache))
	require.NoError(t, err)
	defer s.Shutdown(context.Background())

	recorder := doSearch(t, s, searchURL(credential, "golang", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 1, upstream.callCount())

	// The cache write happens behind the response.
	require.Eventually(t, func() bool {
		_, err := resultCache.Get(context.Background(), "golang")
		return err == nil
	}, time.Second, 10*time.Millisecond, "write-behind cache store never landed")

	recorder = doSearch(t, s, searchURL(credential, "golang", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, upstream.callCount(), "second request must be served from the cache")

	results := decodeResults(t, recorder)
	require.Len(t, results, 2)
	assert.Equal(t, "https://second.example", results[0].URL, "cached results are still ranked per request")
}

func TestSearchCacheFailureFallsThrough(t *testing.T) {
	resultCache, err := badgercache.NewMemoryCache()
	require.NoError(t, err)
	require.NoError(t, resultCache.Close())

	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{}, WithCache(resultCache))
	require.NoError(t, err)

	// A closed cache backend degrades to a plain upstream fetch.
	recorder := doSearch(t, s, searchURL(credential, "golang", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, upstream.callCount())
	assert.Len(t, decodeResults(t, recorder), 2)
}

func TestStatusEndpoint(t *testing.T) {
	authority, credential := newTestAuthority(t)
	upstream := &stubUpstream{results: testResults()}
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{})
	require.NoError(t, err)

	// No credential required.
	recorder := doSearch(t, s, "/status")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var report StatusReport
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	assert.Zero(t, report.SearchesSinceLastRestart)

	for i := 0; i < 2; i++ {
		doSearch(t, s, searchURL(credential, "golang", nil))
	}

	recorder = doSearch(t, s, "/status")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	assert.Equal(t, uint64(2), report.SearchesSinceLastRestart)
}

// TestSearchEndToEnd runs the relay against a stubbed SearXNG instance
// through the real upstream client, covering normalization, dedupe and
// the limit cut in one pass.
func TestSearchEndToEnd(t *testing.T) {
	searxngStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [
			{"title": "Go", "content": "The Go programming language", "url": "https://go.dev"},
			{"title": "Go Blog", "content": "News from the Go team", "url": "https://go.dev/blog"},
			{"title": "Go duplicate", "content": "same address again", "url": "https://go.dev"}
		]}`)
	}))
	defer searxngStub.Close()

	upstream, err := searxng.NewClient(searxngStub.URL)
	require.NoError(t, err)

	authority, credential := newTestAuthority(t)
	s, err := New(authority, newTestLimiter(t, 10), upstream, reverseRanker{})
	require.NoError(t, err)

	recorder := doSearch(t, s, searchURL(credential, "golang", url.Values{"limit": []string{"2"}}))
	require.Equal(t, http.StatusOK, recorder.Code)

	results := decodeResults(t, recorder)
	require.Len(t, results, 2)
	urls := []string{results[0].URL, results[1].URL}
	assert.ElementsMatch(t, []string{"https://go.dev", "https://go.dev/blog"}, urls)
}
