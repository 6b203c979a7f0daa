package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/claimoverlap/internal/logging"
	"github.com/ppiankov/claimoverlap/internal/metrics"
	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/ppiankov/claimoverlap/internal/sparql"
	"github.com/ppiankov/claimoverlap/internal/worker"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// ErrDecode marks a response that arrived but could not be decoded
var ErrDecode = errors.New("malformed response")

// fetchAfterFunc is replaced in tests to skip retry backoff
var fetchAfterFunc = time.After

// maxBackoff caps the wait between retries
const maxBackoff = 30 * time.Second

// StatusError is returned for non-2xx endpoint responses
type StatusError struct {
	StatusCode int
	Status     string
	Snippet    string // short plain-text excerpt of the response body
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status: %s: %s", e.Status, e.Snippet)
}

// Temporary reports whether the endpoint may succeed on a later attempt
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Fetcher issues SPARQL queries over HTTP GET
type Fetcher struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	userAgent  string
	email      string
	maxBytes   int64
	retries    int
	logger     zerolog.Logger
}

// NewFetcher creates a Fetcher. limiter may be nil.
func NewFetcher(cfg model.HTTPConfig, transport http.RoundTripper, limiter *worker.Limiter) *Fetcher {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = model.DefaultConfig().HTTP.MaxBodyBytes
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:   limiter,
		userAgent: userAgent,
		email:     cfg.Email,
		maxBytes:  maxBytes,
		retries:   cfg.Retries,
		logger:    logging.NewLogger("fetcher"),
	}
}

// FetchBindings runs query against endpoint once and returns the result rows
func (f *Fetcher) FetchBindings(ctx context.Context, endpoint, query string) (bindings []model.Binding, err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.PageDuration.Observe(time.Since(start).Seconds())
		metrics.PageRequests.WithLabelValues(outcome).Inc()
	}()

	reqURL, err := buildRequestURL(endpoint, query)
	if err != nil {
		outcome = "request_error"
		return nil, err
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, endpoint); err != nil {
			outcome = "request_error"
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		outcome = "request_error"
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json, application/json;q=0.9")
	if f.email != "" {
		req.Header.Set("From", f.email)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		outcome = "network_error"
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, f.maxBytes)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_error"
		excerpt, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Snippet:    errorSnippet(resp.Header.Get("Content-Type"), excerpt),
		}
	}

	bindings, err = sparql.DecodeBindings(body)
	if err != nil {
		outcome = "decode_error"
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	metrics.Bindings.Add(float64(len(bindings)))
	return bindings, nil
}

// FetchWithRetry calls FetchBindings, retrying transient failures up to the
// configured number of extra attempts with exponential backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, endpoint, query string) ([]model.Binding, error) {
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		bindings, err := f.FetchBindings(ctx, endpoint, query)
		if err == nil {
			return bindings, nil
		}
		if attempt >= f.retries || !isTransient(ctx, err) {
			return nil, err
		}

		f.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Retrying query")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-fetchAfterFunc(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// isTransient classifies errors worth another attempt
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, ErrDecode) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}

// buildRequestURL adds the query and format parameters to endpoint
func buildRequestURL(endpoint, query string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("parse endpoint: %q is not an absolute URL", endpoint)
	}

	params := u.Query()
	params.Set("query", query)
	params.Set("format", "json")
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// snippetLen caps the excerpt carried by StatusError
const snippetLen = 200

// errorSnippet reduces an error body to a single line of plain text
func errorSnippet(contentType string, body []byte) string {
	text := string(body)
	if strings.Contains(strings.ToLower(contentType), "html") {
		text = htmlText(text)
	}

	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > snippetLen {
		text = string(runes[:snippetLen]) + "…"
	}
	return text
}

// htmlText returns the visible text of an HTML document
func htmlText(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "head") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return b.String()
}
