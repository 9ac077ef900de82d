package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emilianodellacasa/colloquio/internal/cli"
	"github.com/emilianodellacasa/colloquio/internal/eval"
	"github.com/emilianodellacasa/colloquio/internal/logging"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Generate simulated sessions for offline evaluation",
	Long: `Runs a batch of simulated interviews, alternating the full engine with a
no-routing baseline across scripted respondent styles, and writes the
session states plus a manifest for the report command.`,
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		out, _ := cmd.Flags().GetString("out")
		sessions, _ := cmd.Flags().GetInt("sessions")
		seed, _ := cmd.Flags().GetInt64("seed")
		questionsPath, _ := cmd.Flags().GetString("questions")

		questions := cli.DefaultQuestions()
		if questionsPath != "" {
			loaded, err := cli.LoadQuestions(questionsPath)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			questions = loaded
		}

		runner := eval.NewRunner(questions, cli.DefaultTemplates(), out,
			eval.WithSessions(sessions),
			eval.WithSeed(seed),
			eval.WithLogger(logging.New(debug)),
		)

		manifest, err := runner.Run(context.Background())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated %d sessions in %s (seed %d)\n", len(manifest.Sessions), out, manifest.Seed)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().String("out", "eval_out", "Output directory for the batch")
	evalCmd.Flags().Int("sessions", 10, "Number of sessions to simulate")
	evalCmd.Flags().Int64("seed", 42, "Base random seed, same seed reproduces the batch")
	evalCmd.Flags().String("questions", "", "YAML file with the question set (default: built-in set)")
}
