package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lexguard/internal/logging"
	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/pipeline"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile      string
	verbose      bool
	outputFormat string
	llmProvider  string
	llmModel     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lexguard",
	Short: "LexGuard - contract clause risk analysis (not legal advice)",
	Long: `LexGuard splits a contract into clauses, classifies each clause,
scores its risk with transparent rules, and answers questions about it.

Everything works offline with deterministic rules. A language model
(OpenAI, Anthropic or Ollama) can optionally refine close calls, add
bounded risk adjustments and write plain-language answers.

LexGuard highlights terms worth a closer look. It is not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of LexGuard.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lexguard %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.lexguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "markdown", "output format (markdown, json)")
	rootCmd.PersistentFlags().StringVar(&llmProvider, "llm", "", "LLM provider override (none, openai, anthropic, ollama)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "model", "", "LLM model override")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("llm"))
	_ = viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("model"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// Load .env first (ignore error if not present)
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".lexguard"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// LEXGUARD_LLM_PROVIDER overrides llm.provider
	viper.SetEnvPrefix("LEXGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// optionalKeys are omitted from the marshalled defaults but must still be
// known to viper for environment overrides to apply
var optionalKeys = []string{
	"llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"embedding.model", "embedding.api_key", "embedding.base_url",
	"storage.database_path", "storage.index_dir", "cache.dir",
}

// setDefaults registers every default value with viper
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaultTree("", tree)
	for _, key := range optionalKeys {
		if !viper.IsSet(key) {
			viper.SetDefault(key, "")
		}
	}
	return nil
}

func setDefaultTree(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaultTree(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig merges defaults, the config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(cfg)
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyProviderEnv fills provider credentials from their conventional
// environment variables when the config leaves them empty
func applyProviderEnv(cfg *model.Config) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	switch strings.ToLower(cfg.Embedding.Provider) {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.Embedding.BaseURL == "" {
			if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
				cfg.Embedding.BaseURL = strings.TrimSuffix(base, "/") + "/api"
			}
		}
	}
}

// app is what every command needs to run
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
}

func newApp() (*app, error) {
	format, err := pipeline.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, pipeline: p, renderer: pipeline.NewRenderer(format)}, nil
}

func (a *app) Close() {
	if err := a.pipeline.Close(); err != nil {
		a.logger.Warn("close pipeline", zap.Error(err))
	}
	_ = a.logger.Sync()
}
