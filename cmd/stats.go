package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/nayidisha/disha/internal/backend"
	"github.com/nayidisha/disha/internal/config"
	"github.com/nayidisha/disha/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics per module",
	Long:  "Without flags, summarises answers and finished quizzes for every module. With --module, lists recent answers for that module; add --report to fetch the backend's progress and completion report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		moduleID, _ := cmd.Flags().GetString("module")
		limit, _ := cmd.Flags().GetInt("limit")
		report, _ := cmd.Flags().GetBool("report")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if moduleID == "" {
			stats, err := d.store.EventRepo().ModuleStats(ctx)
			if err != nil {
				return fmt.Errorf("query stats: %w", err)
			}
			printModuleStats(out, stats)
			return nil
		}

		answers, err := d.store.EventRepo().QueryAnswerEvents(ctx, moduleID, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query answers: %w", err)
		}
		printAnswers(out, answers)

		if !report {
			return nil
		}
		if d.cfg.QuestionSource != config.SourceAPI {
			return fmt.Errorf("--report needs the api question source")
		}
		var (
			rep  backend.ModuleReport
			prog backend.ModuleProgress
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			rep, err = d.api.Report(gctx, moduleID, moduleID)
			return err
		})
		g.Go(func() (err error) {
			prog, err = d.api.ModuleProgress(gctx, moduleID)
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("fetch report: %w", err)
		}
		if err := printDocument(out, "Backend progress", prog); err != nil {
			return err
		}
		return printDocument(out, "Backend report", rep)
	},
}

// printDocument renders a free-form backend document as YAML.
func printDocument(w io.Writer, title string, doc map[string]any) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if len(doc) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("format %s: %w", strings.ToLower(title), err)
	}
	fmt.Fprint(w, string(raw))
	return nil
}

func printModuleStats(w io.Writer, stats []store.ModuleStats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No quiz answers recorded yet.")
		return
	}
	fmt.Fprintf(w, "%-28s  %8s  %8s  %8s  %8s  %8s\n",
		"Module", "Answered", "Correct", "Accuracy", "Attempts", "Best")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	var answered, correct int
	for _, s := range stats {
		fmt.Fprintf(w, "%-28s  %8d  %8d  %7.0f%%  %8d  %7.0f%%\n",
			truncate(s.ModuleID, 28), s.Answered, s.Correct, s.Accuracy(), s.Attempts, s.BestScore)
		answered += s.Answered
		correct += s.Correct
	}
	fmt.Fprintln(w, strings.Repeat("─", 78))
	total := store.ModuleStats{Answered: answered, Correct: correct}
	fmt.Fprintf(w, "%-28s  %8d  %8d  %7.0f%%\n", "TOTAL", answered, correct, total.Accuracy())
}

func printAnswers(w io.Writer, answers []store.AnswerEvent) {
	if len(answers) == 0 {
		fmt.Fprintln(w, "No answers recorded for this module.")
		return
	}
	fmt.Fprintf(w, "%-19s  %-12s  %-20s  %-3s  %-3s  %4s  %s\n",
		"Timestamp", "Difficulty", "Topic", "You", "Key", "Secs", "Question")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, a := range answers {
		mark := "✓"
		if !a.Correct {
			mark = "✗"
		}
		fmt.Fprintf(w, "%-19s  %-12s  %-20s  %-3s  %-3s  %4d  %s %s\n",
			a.Timestamp.Local().Format("2006-01-02 15:04:05"),
			a.Difficulty,
			truncate(a.Topic, 20),
			a.SelectedAnswer,
			a.CorrectAnswer,
			a.TimeSpentSecs,
			mark,
			truncate(a.QuestionText, 40),
		)
	}
}

func init() {
	statsCmd.Flags().StringP("module", "m", "", "Show recent answers for one module")
	statsCmd.Flags().IntP("limit", "n", 20, "Number of answers to show with --module")
	statsCmd.Flags().Bool("report", false, "Also fetch the backend's completion report for --module")
}
