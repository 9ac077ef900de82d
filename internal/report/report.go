// Package report computes session quality metrics over recorded sessions:
// completion rate, average answer length, evasiveness resolution rate and
// branch rate, per session and aggregated per configuration.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/emilianodellacasa/colloquio/internal/text"
	"github.com/emilianodellacasa/colloquio/pkg/classify"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

// SessionMetrics are the per-session measures.
type SessionMetrics struct {
	SessionID string
	Config    string

	// Completion is the fraction of main questions that were answered.
	Completion float64
	// AvgAnswerWords is the mean word count over every recorded answer.
	AvgAnswerWords float64
	// EvasiveResolution is, among main questions whose first answer was
	// evasive, the fraction whose final answer was not. Sessions without
	// evasive answers score 1.
	EvasiveResolution float64
	// BranchRate is the fraction of answered main questions that opened a
	// deepening episode.
	BranchRate float64
}

// Compute derives the metrics for one session. The classifier re-scores
// follow-up answers, which keeps the computation independent of what the
// engine persisted beyond history and signals.
func Compute(state *domain.SessionState, totalQuestions int, cls *classify.Classifier) SessionMetrics {
	m := SessionMetrics{SessionID: state.SessionID}

	if totalQuestions > 0 {
		m.Completion = float64(len(state.Signals)) / float64(totalQuestions)
	}

	if len(state.QAHistory) > 0 {
		words := 0
		for _, qa := range state.QAHistory {
			words += text.WordCount(qa.Answer)
		}
		m.AvgAnswerWords = float64(words) / float64(len(state.QAHistory))
	}

	// Group history entries per main question to find episodes.
	byQuestion := map[int][]domain.QARecord{}
	for _, qa := range state.QAHistory {
		byQuestion[qa.QuestionID] = append(byQuestion[qa.QuestionID], qa)
	}

	branched := 0
	for _, entries := range byQuestion {
		if len(entries) > 1 {
			branched++
		}
	}
	if len(byQuestion) > 0 {
		m.BranchRate = float64(branched) / float64(len(byQuestion))
	}

	evasive, resolved := 0, 0
	for _, sig := range state.Signals {
		if !sig.Evasive {
			continue
		}
		evasive++
		entries := byQuestion[sig.QuestionID]
		if len(entries) == 0 {
			continue
		}
		last := entries[len(entries)-1]
		if !cls.Classify(last.Answer).Evasive {
			resolved++
		}
	}
	if evasive == 0 {
		m.EvasiveResolution = 1
	} else {
		m.EvasiveResolution = float64(resolved) / float64(evasive)
	}

	return m
}

// Stats is a mean and population standard deviation pair.
type Stats struct {
	Mean float64
	Std  float64
}

// ConfigSummary aggregates the per-session metrics of one configuration.
type ConfigSummary struct {
	Config   string
	Sessions int

	Completion        Stats
	AvgAnswerWords    Stats
	EvasiveResolution Stats
	BranchRate        Stats
}

// Summarize groups metrics by configuration, sorted by configuration name.
func Summarize(metrics []SessionMetrics) []ConfigSummary {
	grouped := map[string][]SessionMetrics{}
	for _, m := range metrics {
		grouped[m.Config] = append(grouped[m.Config], m)
	}

	configs := make([]string, 0, len(grouped))
	for c := range grouped {
		configs = append(configs, c)
	}
	sort.Strings(configs)

	summaries := make([]ConfigSummary, 0, len(configs))
	for _, c := range configs {
		group := grouped[c]
		summaries = append(summaries, ConfigSummary{
			Config:            c,
			Sessions:          len(group),
			Completion:        stats(group, func(m SessionMetrics) float64 { return m.Completion }),
			AvgAnswerWords:    stats(group, func(m SessionMetrics) float64 { return m.AvgAnswerWords }),
			EvasiveResolution: stats(group, func(m SessionMetrics) float64 { return m.EvasiveResolution }),
			BranchRate:        stats(group, func(m SessionMetrics) float64 { return m.BranchRate }),
		})
	}
	return summaries
}

func stats(group []SessionMetrics, pick func(SessionMetrics) float64) Stats {
	if len(group) == 0 {
		return Stats{}
	}
	sum := 0.0
	for _, m := range group {
		sum += pick(m)
	}
	mean := sum / float64(len(group))

	variance := 0.0
	for _, m := range group {
		d := pick(m) - mean
		variance += d * d
	}
	return Stats{Mean: mean, Std: math.Sqrt(variance / float64(len(group)))}
}

// WriteSessionsCSV writes one row per session.
func WriteSessionsCSV(w io.Writer, metrics []SessionMetrics) error {
	cw := csv.NewWriter(w)
	header := []string{"session_id", "config", "completion_rate", "avg_answer_words", "evasive_resolution_rate", "branch_rate"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing sessions header: %w", err)
	}
	for _, m := range metrics {
		row := []string{
			m.SessionID,
			m.Config,
			formatRate(m.Completion),
			formatRate(m.AvgAnswerWords),
			formatRate(m.EvasiveResolution),
			formatRate(m.BranchRate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing session row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per configuration with mean and stddev
// columns for every metric.
func WriteSummaryCSV(w io.Writer, summaries []ConfigSummary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"config", "sessions",
		"completion_mean", "completion_std",
		"avg_answer_words_mean", "avg_answer_words_std",
		"evasive_resolution_mean", "evasive_resolution_std",
		"branch_rate_mean", "branch_rate_std",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			s.Config,
			fmt.Sprintf("%d", s.Sessions),
			formatRate(s.Completion.Mean), formatRate(s.Completion.Std),
			formatRate(s.AvgAnswerWords.Mean), formatRate(s.AvgAnswerWords.Std),
			formatRate(s.EvasiveResolution.Mean), formatRate(s.EvasiveResolution.Std),
			formatRate(s.BranchRate.Mean), formatRate(s.BranchRate.Std),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatRate(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
