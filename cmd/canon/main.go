// Package main provides the canon CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is the application config file location
var configPath string

func main() {
	// Optional .env for local overrides (OLLAMA_URL etc.); absence is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "canon",
	Short: "Canonical entity normalizer for academic metadata",
	Long: `canon resolves noisy free-text mentions of journals, organizations,
countries, funders, and topics to canonical catalog records.

It blends lexical fuzzy matching, embedding similarity, and contextual
signals (ISSN, country codes) into a thresholded match decision. All
commands output JSON by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to the application config file")
	rootCmd.Version = Version
}

// defaultConfigPath honors CANON_CONFIG, falling back to canon.yml in
// the working directory.
func defaultConfigPath() string {
	if p := os.Getenv("CANON_CONFIG"); p != "" {
		return p
	}
	return "canon.yml"
}
