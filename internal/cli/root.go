package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/medwatch/claimscan/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimscan",
	Short: "Claimscan - regulated medical-advertising claim detection",
	Long: `Claimscan screens web-page text for regulated medical-advertising
claims and renders a per-document compliance score with explainable
evidence and recommended fixes.

Every finding cites the matched span, the contextual evidence that raised
or lowered its confidence, and the legal basis. Ambiguous candidates can be
escalated to an AI verifier; overturned findings feed a learned exclusion
store that suppresses recurring false positives on later runs.

Claimscan flags advertising-law exposure. It does not judge medical facts.`,
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
	Long:  `Display the version number and build information for Claimscan.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimscan v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
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

		viper.AddConfigPath(filepath.Join(home, ".claimscan"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMSCAN_*
	viper.SetEnvPrefix("CLAIMSCAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// resolvePaths fills in home-relative defaults the static defaults leave empty
func resolvePaths(cfg *model.Config) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	base := filepath.Join(home, ".claimscan")
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(base, "cache")
	}
	if cfg.Exclusions.Path == "" {
		cfg.Exclusions.Path = filepath.Join(base, "exclusions.jsonl")
	}
}

// configureAI wires the escalation provider, pulling API keys from the
// environment only
func configureAI(cfg *model.Config, provider, modelName string) error {
	cfg.AI.Provider = provider
	cfg.AI.Model = modelName

	switch provider {
	case "openai":
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.AI.BaseURL = baseURL
		}
	default:
		return fmt.Errorf("unknown AI provider: %s (supported: openai, ollama)", provider)
	}
	return nil
}
