package cli

import (
	"fmt"
	"os"

	"github.com/oncorad/oncoguard/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "oncoguard",
	Short: "OncoGuard - Hallucination checking for clinical RAG answers",
	Long: `OncoGuard validates generated clinical answers against the guideline
passages they were produced from.

It extracts factual claims, verifies citations against retrieved
sources, detects unsupported studies, authors, and statistics, and
either flags, annotates, or removes what cannot be verified.

OncoGuard checks support, not medical correctness. A clean verdict
means the answer matches its sources, nothing more.`,
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
	Long:  `Display the version number and build information for OncoGuard.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("oncoguard v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.oncoguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.oncoguard")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ONCOGUARD_*
	viper.SetEnvPrefix("ONCOGUARD")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults, then the
// config file / environment, then per-command flags on top (applied
// by the callers).
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("strategy"); v != "" {
		cfg.Strategy = v
	}
	if v := viper.GetString("mode"); v != "" {
		cfg.Mode = v
	}
	if viper.IsSet("policy.min_confidence") {
		cfg.Policy.MinConfidence = viper.GetFloat64("policy.min_confidence")
	}
	if viper.IsSet("policy.max_hallucinations") {
		cfg.Policy.MaxHallucinations = viper.GetInt("policy.max_hallucinations")
	}
	if viper.IsSet("policy.max_citation_errors") {
		cfg.Policy.MaxCitationErrors = viper.GetInt("policy.max_citation_errors")
	}
	if viper.IsSet("policy.support_threshold") {
		cfg.Policy.SupportThreshold = viper.GetFloat64("policy.support_threshold")
	}
	if viper.IsSet("policy.strict_mode") {
		cfg.Policy.StrictMode = viper.GetBool("policy.strict_mode")
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("retrieval.base_url"); v != "" {
		cfg.Retrieval.BaseURL = v
	}
	if viper.IsSet("retrieval.top_k") {
		cfg.Retrieval.TopK = viper.GetInt("retrieval.top_k")
	}
	if viper.IsSet("concurrency.batch_workers") {
		cfg.Concurrency.BatchWorkers = viper.GetInt("concurrency.batch_workers")
	}

	return cfg
}

// resolveAPIKey fills the provider API key from the environment,
// matching how deployments actually pass secrets
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
