// Package main provides the entry point for the IntelliConsult API server
// and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "intelliconsult",
	Short: "IntelliConsult HTTP API Server",
	Long:  "IntelliConsult tracks consultant trainings, attendance and skills, and matches consultants to opportunities through an external ML service.",
	// Errors are printed once by main.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (JSON, YAML or TOML)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
