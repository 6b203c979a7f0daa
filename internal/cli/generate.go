package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/claimoverlap/internal/claims"
	"github.com/ppiankov/claimoverlap/internal/metrics"
	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/ppiankov/claimoverlap/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var inputFile string

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate CSV files mapping ROR IDs to Wikidata claim values",
	Long: `Generate runs one SPARQL query per page against the endpoint, in parallel,
merges the pages and writes <claim>_mapping.csv for every claim in the input file.

Pages are requested at offset, offset+limit, ... for --pages pages; the run does
not detect when results are exhausted. A failed page is logged and skipped.

Example:
  claimoverlap generate -i claims.json
  claimoverlap generate -i claims.json -d out --email ops@example.org
  claimoverlap generate -i claims.json --limit 5000 --pages 40 --workers 3`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	defaults := model.DefaultConfig()
	flags := generateCmd.Flags()

	flags.StringVarP(&inputFile, "input-file", "i", "", "path to JSON file containing claim IDs and names")
	_ = generateCmd.MarkFlagRequired("input-file")

	flags.StringP("output-directory", "d", defaults.Output.Directory, "directory to store output CSV files")
	flags.StringP("endpoint", "e", defaults.Endpoint, "SPARQL endpoint URL")
	flags.IntP("limit", "l", defaults.Paging.Limit, "LIMIT value for each page")
	flags.IntP("offset", "o", defaults.Paging.Offset, "initial OFFSET value")
	flags.Int("pages", defaults.Paging.Pages, "number of pages to request")
	flags.String("email", "", "contact email sent in the From request header")
	flags.String("registry-property", defaults.Query.RegistryProperty, "Wikidata property holding the ROR ID")

	flags.Int("workers", defaults.Concurrency.Workers, "number of concurrent page requests")
	flags.String("user-agent", defaults.HTTP.UserAgent, "HTTP User-Agent")
	flags.Duration("timeout", defaults.HTTP.Timeout, "timeout for a single page request")
	flags.Int("retries", defaults.HTTP.Retries, "extra attempts for pages failing with network, 429 or 5xx errors")
	flags.Int64("max-bytes", defaults.HTTP.MaxBodyBytes, "max response bytes to read per page")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.Float64("rps", defaults.RateLimiting.RequestsPerSecond, "max requests per second to the endpoint (0 = unlimited)")
	flags.Int("burst", defaults.RateLimiting.BurstSize, "rate limiter burst size")
	flags.Bool("respect-robots", defaults.Robots.Enabled, "check the endpoint's robots.txt before querying")

	flags.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	flags.Bool("fail-on-error", false, "exit non-zero when the run fails (default: log and exit 0)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := generate(cmd.Context(), cfg, inputFile); err != nil {
		log.Error().Err(err).Msg("An error occurred")
		if cfg.Output.FailOnError {
			return err
		}
	}
	return nil
}

// generate loads the claims and runs the pipeline
func generate(ctx context.Context, cfg *model.Config, inputFile string) error {
	if cfg.Metrics.File != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
				log.Warn().Err(err).Msg("Failed to write metrics")
			}
		}()
	}

	spec, err := claims.LoadFile(inputFile)
	if err != nil {
		return err
	}
	log.Debug().Int("claims", len(spec)).Str("input_file", inputFile).Msg("Loaded claims")

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	start := time.Now()
	result, err := p.Run(ctx, spec)
	if err != nil {
		return err
	}

	log.Info().
		Int("files", len(result.Files)).
		Int("failed_pages", result.FailedPages).
		Dur("duration", time.Since(start)).
		Msgf("CSV files have been generated in %s", cfg.Output.Directory)

	return nil
}
