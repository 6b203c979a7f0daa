package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/claimoverlap/internal/cache"
)

func newRobotsServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRobotsChecker_Disallowed(t *testing.T) {
	server := newRobotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /sparql\n", nil)
	checker := NewRobotsChecker(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil, "claimoverlap/1.0")

	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/sparql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected /sparql to be disallowed")
	}

	allowed, _, _ = checker.CanFetch(context.Background(), server.URL+"/other")
	if !allowed {
		t.Error("expected /other to be allowed")
	}
}

func TestRobotsChecker_CrawlDelayAndCache(t *testing.T) {
	var hits int32
	server := newRobotsServer(t, http.StatusOK, "User-agent: claimoverlap\nCrawl-delay: 2\nAllow: /\n", &hits)
	checker := NewRobotsChecker(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil, "claimoverlap/1.0 (ops@example.org)")

	for i := 0; i < 3; i++ {
		allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/sparql")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Error("expected request to be allowed")
		}
		if delay != 2*time.Second {
			t.Errorf("expected crawl delay 2s, got %v", delay)
		}
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", n)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := newRobotsServer(t, http.StatusNotFound, "", nil)
	checker := NewRobotsChecker(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil, "claimoverlap")

	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/sparql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected 404 robots.txt to allow everything")
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute,
		&http.Client{Timeout: 200 * time.Millisecond}, "claimoverlap")

	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/sparql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected unreachable robots.txt to allow")
	}
}

func TestRobotsChecker_RelativeURL(t *testing.T) {
	checker := NewRobotsChecker(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil, "claimoverlap")
	if _, _, err := checker.CanFetch(context.Background(), "/sparql"); err == nil {
		t.Error("expected error for relative URL")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"ror_wikidata_claim_overlap":              "ror_wikidata_claim_overlap",
		"claimoverlap/1.0 (+https://example.org)": "claimoverlap",
		"": "",
	}
	for in, expected := range tests {
		if got := NormalizeUserAgent(in); got != expected {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, expected)
		}
	}
}
