package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nayidisha/disha/internal/config"
)

// statusCheck is one probed dependency.
type statusCheck struct {
	name   string
	detail string
	probe  func(ctx context.Context) error
}

type statusResult struct {
	name    string
	detail  string
	err     error
	elapsed time.Duration
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configuration and reachability of every dependency",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.RequestTimeout)
		defer cancel()

		results := runStatusChecks(ctx, d.statusChecks())
		printStatus(cmd.OutOrStdout(), d.cfg, results)
		for _, r := range results {
			if r.err != nil {
				return fmt.Errorf("%s is unavailable", r.name)
			}
		}
		return nil
	},
}

func (d *deps) statusChecks() []statusCheck {
	checks := []statusCheck{
		{name: "database", detail: "local sqlite", probe: func(ctx context.Context) error {
			return d.store.DB().PingContext(ctx)
		}},
		{name: "sessions", detail: d.cfg.SessionBackend, probe: func(ctx context.Context) error {
			_, err := d.sessions.Keys(ctx, "quiz_")
			return err
		}},
	}
	if d.cfg.QuestionSource == config.SourceAPI {
		checks = append(checks, statusCheck{name: "backend", detail: d.cfg.APIBaseURL, probe: func(ctx context.Context) error {
			if !d.api.Health(ctx) {
				return fmt.Errorf("health check failed")
			}
			return nil
		}})
	}
	switch {
	case d.progress != nil:
		checks = append(checks, statusCheck{name: "progress", detail: "postgres", probe: func(ctx context.Context) error {
			_, err := d.progress.Get(ctx, d.cfg.UserID)
			return err
		}})
	case d.progressErr != nil:
		checks = append(checks, statusCheck{name: "progress", detail: "postgres", probe: func(context.Context) error {
			return d.progressErr
		}})
	}
	return checks
}

// runStatusChecks probes every check concurrently. Failures are reported
// per check rather than cancelling the others.
func runStatusChecks(ctx context.Context, checks []statusCheck) []statusResult {
	results := make([]statusResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			err := c.probe(ctx)
			results[i] = statusResult{name: c.name, detail: c.detail, err: err, elapsed: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printStatus(w io.Writer, cfg config.Config, results []statusResult) {
	user := cfg.UserID
	if user == "" {
		user = "(anonymous)"
	}
	fmt.Fprintf(w, "User:       %s\n", user)
	fmt.Fprintf(w, "Questions:  %s\n", cfg.QuestionSource)
	if cfg.QuestionSource == config.SourceLLM {
		fmt.Fprintf(w, "LLM:        %s\n", cfg.LLM.Provider)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		state := "ok"
		if r.err != nil {
			state = "FAIL: " + r.err.Error()
		}
		fmt.Fprintf(w, "%-10s  %-32s  %6dms  %s\n", r.name, truncate(r.detail, 32), r.elapsed.Milliseconds(), state)
	}
}
