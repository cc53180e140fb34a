package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	rootCmd    = &cobra.Command{
		Use:   "goalflow",
		Short: "Goalflow - goal orchestration pipeline",
		Long: `Goalflow turns natural-language goals into executed task graphs.
Each goal is routed by intent, checked against safety rules, scored for
confidence, decomposed into a dependency-ordered plan, and executed with
progress tracking and reflection scoring.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
