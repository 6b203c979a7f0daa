// Package pipeline fetches the ROR/Wikidata overlap page by page and writes
// the per-claim mapping files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/claimoverlap/internal/cache"
	"github.com/ppiankov/claimoverlap/internal/logging"
	"github.com/ppiankov/claimoverlap/internal/metrics"
	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/ppiankov/claimoverlap/internal/sparql"
	"github.com/ppiankov/claimoverlap/internal/util"
	"github.com/ppiankov/claimoverlap/internal/worker"
	"github.com/rs/zerolog"
)

// ErrRobotsDisallowed is returned when robots.txt forbids querying the endpoint
var ErrRobotsDisallowed = errors.New("endpoint disallowed by robots.txt")

// Pipeline builds the query, fans out page requests, merges pages and emits CSVs
type Pipeline struct {
	config   *model.Config
	fetcher  *Fetcher
	limiter  *worker.Limiter
	robots   *util.RobotsChecker // nil when robots checking is disabled
	renderer *Renderer
	logger   zerolog.Logger
}

// NewPipeline validates cfg and wires the fetcher, limiter and robots checker
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	transport, err := util.NewTransport(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)
	if err != nil {
		return nil, fmt.Errorf("configure transport: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var robots *util.RobotsChecker
	if cfg.Robots.Enabled {
		robots = util.NewRobotsChecker(
			cache.NewMemoryCache(cfg.Robots.CacheTTL, 10*time.Minute),
			cfg.Robots.CacheTTL,
			&http.Client{Timeout: 30 * time.Second, Transport: transport},
			cfg.HTTP.UserAgent,
		)
	}

	return &Pipeline{
		config:   cfg,
		fetcher:  NewFetcher(cfg.HTTP, transport, limiter),
		limiter:  limiter,
		robots:   robots,
		renderer: NewRenderer(),
		logger:   logging.NewLogger("pipeline"),
	}, nil
}

// validateConfig rejects settings that cannot produce a meaningful run
func validateConfig(cfg *model.Config) error {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.Paging.Limit <= 0 {
		return fmt.Errorf("limit must be positive (got %d)", cfg.Paging.Limit)
	}
	if cfg.Paging.Offset < 0 {
		return fmt.Errorf("offset must not be negative (got %d)", cfg.Paging.Offset)
	}
	if cfg.Paging.Pages < 0 {
		return fmt.Errorf("pages must not be negative (got %d)", cfg.Paging.Pages)
	}
	if cfg.Output.Directory == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// RunResult summarizes a completed run
type RunResult struct {
	Query       string
	Pages       int
	FailedPages int
	Bindings    int
	Records     int
	Files       []OutputFile
}

// Query returns the base query for spec, without LIMIT/OFFSET
func (p *Pipeline) Query(spec model.ClaimSpec) string {
	return sparql.Build(p.config.Query.RegistryProperty, spec)
}

// Run fetches every configured page in parallel, merges the pages in offset
// order so later offsets win, and writes the mapping files.
// Failed pages contribute no records and do not fail the run.
func (p *Pipeline) Run(ctx context.Context, spec model.ClaimSpec) (*RunResult, error) {
	start := time.Now()
	query := p.Query(spec)

	p.logger.Debug().Str("query", query).Msg("Built query")

	if err := p.checkRobots(ctx); err != nil {
		return nil, err
	}

	offsets := sparql.PageOffsets(p.config.Paging.Offset, p.config.Paging.Limit, p.config.Paging.Pages)
	jobs := make([]worker.Job, len(offsets))
	for i, offset := range offsets {
		jobs[i] = &pageJob{
			offset: offset,
			fetch: func(ctx context.Context, offset int) *PageResult {
				return p.fetchPage(ctx, query, spec, offset)
			},
		}
	}

	p.logger.Info().
		Str("endpoint", p.config.Endpoint).
		Strs("claims", spec.Names()).
		Int("pages", len(offsets)).
		Int("limit", p.config.Paging.Limit).
		Int("offset", p.config.Paging.Offset).
		Int("workers", p.config.Concurrency.Workers).
		Msg("Fetching pages")

	results := worker.RunAll(ctx, p.config.Concurrency.Workers, jobs)

	run := &RunResult{Query: query, Pages: len(offsets)}
	agg := model.NewAggregate()
	for i, r := range results {
		page, ok := r.(*PageResult)
		if !ok || page == nil {
			run.FailedPages++
			p.logger.Warn().Int("offset", offsets[i]).Msg("Page was not fetched")
			continue
		}
		if page.GetError() != nil {
			run.FailedPages++
		}
		run.Bindings += page.Bindings
		agg.Merge(page.Records)
		p.logger.Debug().
			Int("offset", page.Offset).
			Int("records", page.Records.Len()).
			Msg("Merged page")
	}
	run.Records = agg.Len()
	metrics.Records.Set(float64(agg.Len()))

	p.logger.Info().
		Int("failed_pages", run.FailedPages).
		Str("bindings", humanize.Comma(int64(run.Bindings))).
		Str("records", humanize.Comma(int64(run.Records))).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	files, err := p.renderer.WriteCSVFiles(agg, p.config.Output.Directory, spec)
	run.Files = files
	if err != nil {
		return run, fmt.Errorf("write CSV files: %w", err)
	}

	return run, nil
}

// fetchPage fetches and normalizes one page. Errors are logged and turned
// into an empty page.
func (p *Pipeline) fetchPage(ctx context.Context, query string, spec model.ClaimSpec, offset int) *PageResult {
	paged := sparql.Paginate(query, p.config.Paging.Limit, offset)

	bindings, err := p.fetcher.FetchWithRetry(ctx, p.config.Endpoint, paged)
	if err == nil {
		var records *model.Aggregate
		if records, err = Normalize(bindings, spec); err == nil {
			p.logger.Debug().
				Int("offset", offset).
				Int("bindings", len(bindings)).
				Int("records", records.Len()).
				Msg("Page fetched")
			return &PageResult{Offset: offset, Bindings: len(bindings), Records: records}
		}
	}

	p.logger.Error().Err(err).Int("offset", offset).Msg("Error in worker")
	return &PageResult{Offset: offset, Records: model.NewAggregate(), Error: err}
}

// checkRobots consults robots.txt for the endpoint when enabled and applies
// any crawl delay to the limiter
func (p *Pipeline) checkRobots(ctx context.Context) error {
	if p.robots == nil {
		return nil
	}

	allowed, delay, err := p.robots.CanFetch(ctx, p.config.Endpoint)
	if err != nil {
		return fmt.Errorf("check robots.txt: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrRobotsDisallowed, p.config.Endpoint)
	}
	if delay > 0 {
		p.logger.Info().Dur("crawl_delay", delay).Msg("Honoring robots.txt crawl delay")
		if err := p.limiter.SetCrawlDelay(p.config.Endpoint, delay); err != nil {
			return fmt.Errorf("apply crawl delay: %w", err)
		}
	}
	return nil
}
