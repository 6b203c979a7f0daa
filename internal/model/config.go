package model

import "time"

// Config holds all runtime settings for a claimoverlap run
type Config struct {
	Endpoint     string             `yaml:"endpoint" mapstructure:"endpoint"`
	Query        QueryConfig        `yaml:"query" mapstructure:"query"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Paging       PagingConfig       `yaml:"paging" mapstructure:"paging"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Robots       RobotsConfig       `yaml:"robots" mapstructure:"robots"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
}

// QueryConfig controls query construction
type QueryConfig struct {
	RegistryProperty string `yaml:"registry_property" mapstructure:"registry_property"` // property holding the ROR ID
}

// HTTPConfig controls the SPARQL HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"` // per request
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	Email        string        `yaml:"email" mapstructure:"email"` // sent as the From header
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Retries      int           `yaml:"retries" mapstructure:"retries"` // extra attempts per page
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// PagingConfig controls the LIMIT/OFFSET window
type PagingConfig struct {
	Limit  int `yaml:"limit" mapstructure:"limit"`
	Offset int `yaml:"offset" mapstructure:"offset"`
	Pages  int `yaml:"pages" mapstructure:"pages"`
}

// ConcurrencyConfig controls the page worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-host request pacing. Zero rps disables it.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// RobotsConfig controls the robots.txt check of the endpoint
type RobotsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// OutputConfig controls where and how results are written
type OutputConfig struct {
	Directory   string `yaml:"directory" mapstructure:"directory"`
	FailOnError bool   `yaml:"fail_on_error" mapstructure:"fail_on_error"`
}

// LoggingConfig controls the global logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// MetricsConfig controls the Prometheus textfile export. Empty file disables it.
type MetricsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// Defaults matching the behavior of the original mapping script
const (
	DefaultEndpoint         = "https://query.wikidata.org/sparql"
	DefaultUserAgent        = "ror_wikidata_claim_overlap"
	DefaultOutputDirectory  = "ror_wikidata_claims"
	DefaultRegistryProperty = "P6782"
	DefaultLimit            = 10000
	DefaultPages            = 20
	DefaultWorkers          = 5
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Query: QueryConfig{
			RegistryProperty: DefaultRegistryProperty,
		},
		HTTP: HTTPConfig{
			Timeout:      5 * time.Minute,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 512 << 20,
		},
		Paging: PagingConfig{
			Limit:  DefaultLimit,
			Offset: 0,
			Pages:  DefaultPages,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         DefaultWorkers,
		},
		Robots: RobotsConfig{
			Enabled:  false,
			CacheTTL: time.Hour,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDirectory,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}
