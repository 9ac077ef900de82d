package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emilianodellacasa/colloquio/internal/cli"
	"github.com/emilianodellacasa/colloquio/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Conduct an interactive interview session",
	Long: `Starts an interview on the terminal. Answers are read from stdin; a lone
"q" ends the session early. Interrupted sessions can be continued with
--resume.`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		debug, _ := cmd.Flags().GetBool("debug")
		questionsPath, _ := cmd.Flags().GetString("questions")
		templatesPath, _ := cmd.Flags().GetString("templates")
		profilesDir, _ := cmd.Flags().GetString("profiles")
		profilePath, _ := cmd.Flags().GetString("profile")
		redisURL, _ := cmd.Flags().GetString("redis")
		resumeID, _ := cmd.Flags().GetString("resume")
		noRouting, _ := cmd.Flags().GetBool("no-routing")
		noPII, _ := cmd.Flags().GetBool("no-pii")
		plain, _ := cmd.Flags().GetBool("plain")

		if !plain {
			tui.PrintBanner()
		}

		// A first interrupt cancels the session cleanly; the turn loop
		// finalizes the transcript before returning.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := cli.RunSession(ctx, cli.RunOptions{
			QuestionsPath: questionsPath,
			TemplatesPath: templatesPath,
			ProfilesDir:   profilesDir,
			ProfilePath:   profilePath,
			OutputDir:     output,
			RedisURL:      redisURL,
			ResumeID:      resumeID,
			NoRouting:     noRouting,
			NoPII:         noPII,
			Plain:         plain,
			Debug:         debug,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("questions", "", "YAML file with the question set (default: built-in set)")
	runCmd.Flags().String("templates", "", "YAML file with follow-up templates (default: built-in set)")
	runCmd.Flags().String("profiles", "profili", "Directory with respondent profile JSON files")
	runCmd.Flags().String("profile", "", "Specific profile file, skips the selection menu")
	runCmd.Flags().String("redis", "", "Redis URL for session state (default: file store under --output)")
	runCmd.Flags().String("resume", "", "Session ID to continue")
	runCmd.Flags().Bool("no-routing", false, "Classify answers but never open deepening sub-dialogues")
	runCmd.Flags().Bool("no-pii", false, "Disable PII masking in transcripts")
	runCmd.Flags().Bool("plain", false, "Plain text output, no banner or markdown rendering")

	// Make 'run' the default when no subcommand is given.
	rootCmd.Run = runCmd.Run
}
