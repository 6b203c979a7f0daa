package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := limiter.Wait(ctx, "https://query.wikidata.org/sparql"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unlimited limiter should not block, took %v", elapsed)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "http://example.com/sparql"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Second request should block until the context expires
	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(shortCtx, url); err == nil {
		t.Error("expected second wait to fail within 50ms at 1 rps")
	}

	// Other hosts are paced independently
	if err := limiter.Wait(ctx, "http://other.example.com/sparql"); err != nil {
		t.Errorf("wait for other host failed: %v", err)
	}
}

func TestLimiter_SetCrawlDelay(t *testing.T) {
	limiter := NewLimiter(0, 5)
	url := "https://query.wikidata.org/sparql"

	if err := limiter.SetCrawlDelay(url, time.Hour); err != nil {
		t.Fatalf("SetCrawlDelay failed: %v", err)
	}

	ctx := context.Background()
	if err := limiter.Wait(ctx, url); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(shortCtx, url); err == nil {
		t.Error("expected crawl delay to block second request")
	}
}

func TestLimiter_CrawlDelayLooserThanRate(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	url := "https://query.wikidata.org/sparql"

	_ = limiter.SetCrawlDelay(url, time.Millisecond)
	if got := limiter.getLimiter("query.wikidata.org").Limit(); got != limiter.defaultRate {
		t.Errorf("expected configured rate to be kept, got %v", got)
	}
}
