package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emilianodellacasa/colloquio/internal/eval"
	"github.com/emilianodellacasa/colloquio/internal/report"
	filestore "github.com/emilianodellacasa/colloquio/pkg/adapters/file"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute comparison metrics over an evaluation batch",
	Long: `Reads the sessions generated by the eval command, computes per-session
metrics (completion, answer richness, evasive resolution, branch rate) and
writes per-session and per-configuration CSV files next to the manifest.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")

		if err := runReport(cmd.Context(), dir); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runReport(ctx context.Context, dir string) error {
	manifest, err := eval.LoadManifest(dir)
	if err != nil {
		return err
	}

	store, err := filestore.NewStore(filepath.Join(dir, eval.SessionsDir))
	if err != nil {
		return err
	}

	cls := classify.Default()
	metrics := make([]report.SessionMetrics, 0, len(manifest.Sessions))
	for _, entry := range manifest.Sessions {
		state, err := store.Load(ctx, entry.SessionID)
		if err != nil {
			return fmt.Errorf("loading session %s: %w", entry.SessionID, err)
		}
		m := report.Compute(state, manifest.QuestionCount, cls)
		m.Config = entry.Config
		metrics = append(metrics, m)
	}

	sessionsPath := filepath.Join(dir, "sessions.csv")
	f, err := os.Create(sessionsPath)
	if err != nil {
		return err
	}
	if err := report.WriteSessionsCSV(f, metrics); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	summaries := report.Summarize(metrics)
	summaryPath := filepath.Join(dir, "summary.csv")
	f, err = os.Create(summaryPath)
	if err != nil {
		return err
	}
	if err := report.WriteSummaryCSV(f, summaries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	for _, s := range summaries {
		fmt.Printf("%-12s sessions=%d completion=%.2f±%.2f words=%.2f±%.2f resolution=%.2f±%.2f branches=%.2f±%.2f\n",
			s.Config, s.Sessions,
			s.Completion.Mean, s.Completion.Std,
			s.AvgAnswerWords.Mean, s.AvgAnswerWords.Std,
			s.EvasiveResolution.Mean, s.EvasiveResolution.Std,
			s.BranchRate.Mean, s.BranchRate.Std)
	}
	fmt.Printf("Wrote %s and %s\n", sessionsPath, summaryPath)
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("dir", "eval_out", "Evaluation batch directory")
}
