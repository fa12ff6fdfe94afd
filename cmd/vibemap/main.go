package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "vibemap",
	Short:   "Emotion classification and 3D projection for tweet embeddings",
	Version: version,
	Long: `vibemap labels pre-encoded tweets with one of ten emotion levels and
projects them into 3D coordinates for visualization.

The pipeline runs in three stages: nearest-prototype similarity, a trained
per-level weighting, and a clustering pass that overrides low-confidence
labels.`,
	SilenceUsage: true,
}

func main() {
	// Missing .env is fine; required variables are checked where used.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(assignCmd, projectCmd, estimateCmd)
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
