package cmd

import (
	"fmt"
	"os"

	"github.com/itish2003/studysense/config"
	"github.com/spf13/cobra"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "studysense",
	Short: "StudySense - ask, practice and review from your own notes",
	Long: `StudySense stores your notes per subject, answers questions from them,
generates practice questions and flashcards, and grades your answers
using a local Ollama model or Gemini.

Example usage:
  studysense serve                        # Start the HTTP API
  studysense import ./notes               # Import ./notes/<subject>/... files
  studysense subjects list                # List subjects
  studysense quiz "Data Structures" -n 3  # Practice in the terminal`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		return nil
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "studysense.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
