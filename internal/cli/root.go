package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ppiankov/claimoverlap/internal/logging"
	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logJSON bool

	// cfg is the merged configuration for the executing command
	cfg *model.Config
)

// flagKeys maps flag names to configuration keys. A flag name means the same
// setting on every command that defines it.
var flagKeys = map[string]string{
	"log-level":         "logging.level",
	"output-directory":  "output.directory",
	"endpoint":          "endpoint",
	"limit":             "paging.limit",
	"offset":            "paging.offset",
	"pages":             "paging.pages",
	"email":             "http.email",
	"user-agent":        "http.user_agent",
	"timeout":           "http.timeout",
	"retries":           "http.retries",
	"max-bytes":         "http.max_body_bytes",
	"http-proxy":        "http.http_proxy",
	"https-proxy":       "http.https_proxy",
	"workers":           "concurrency.workers",
	"rps":               "rate_limiting.requests_per_second",
	"burst":             "rate_limiting.burst_size",
	"respect-robots":    "robots.enabled",
	"registry-property": "query.registry_property",
	"metrics-file":      "metrics.file",
	"fail-on-error":     "output.fail_on_error",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimoverlap",
	Short: "Map ROR IDs to Wikidata claim values",
	Long: `claimoverlap queries the Wikidata SPARQL endpoint for organizations that
carry a ROR ID and writes one CSV mapping file per requested claim.

Claims are read from a JSON file mapping Wikidata property IDs to names:

  {"P17": "country", "P856": "website"}`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

// Execute runs the root command until it completes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimoverlap " + version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimoverlap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON lines instead of console output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.claimoverlap")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CLAIMOVERLAP_PAGING_LIMIT overrides paging.limit
	viper.SetEnvPrefix("CLAIMOVERLAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := registerDefaults(); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every configuration key known to viper so that
// AutomaticEnv resolves CLAIMOVERLAP_* for settings without a flag
func registerDefaults() error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for name, value := range tree {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if sub, ok := value.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, value)
	}
}

// prepare binds the executing command's flags, loads the merged
// configuration and sets up logging
func prepare(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd.Flags()); err != nil {
		return err
	}

	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}
	if logJSON {
		loaded.Logging.Pretty = false
	}
	cfg = loaded

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Pretty = cfg.Logging.Pretty
	logging.Setup(logCfg)
	return nil
}

// bindFlags binds every known flag of fs to its configuration key
func bindFlags(fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := viper.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// loadConfig layers flags, environment and config file over the defaults
func loadConfig() (*model.Config, error) {
	loaded := model.DefaultConfig()
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return loaded, nil
}
