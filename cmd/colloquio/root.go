package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "colloquio",
	Short: "Colloquio is a guided dialogue engine for structured interviews",
	Long: `Colloquio conducts multi-turn interviews in Italian: it classifies every
answer, opens bounded deepening sub-dialogues when an answer is evasive or
touches an emotional theme, and bridges naturally between questions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("output", "colloqui", "Directory for transcripts and session state")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
