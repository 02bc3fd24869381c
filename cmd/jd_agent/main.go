// Package main provides the entry point for the job description refiner.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jd_agent",
	Short: "Interactive job description refinement",
	Long:  "jd_agent extracts structured fields from free-text job postings, asks clarifying questions across multiple rounds, and produces a refined structured job description.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
