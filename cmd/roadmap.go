package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nayidisha/disha/internal/config"
	"github.com/nayidisha/disha/internal/onboarding"
	rm "github.com/nayidisha/disha/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate or inspect your learning roadmap",
}

var roadmapGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a roadmap without the interactive onboarding",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		goal, _ := cmd.Flags().GetString("goal")
		level, _ := cmd.Flags().GetString("level")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		svc := d.onboarding()
		res, err := svc.Start(ctx, rm.Selections{Subject: subject, Goal: goal, SkillLevel: level})
		if err != nil {
			return fmt.Errorf("generate roadmap: %w", err)
		}
		out := cmd.OutOrStdout()
		if res.Reused {
			fmt.Fprintln(out, "You already have a roadmap; showing it instead of generating a new one.")
			fmt.Fprintln(out)
		}
		view, err := svc.Load(ctx)
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}
		printRoadmap(out, view)
		return nil
	},
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your roadmap and module progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		view, err := d.onboarding().Load(ctx)
		if errors.Is(err, onboarding.ErrNoRoadmap) && d.cfg.QuestionSource == config.SourceAPI {
			// The backend may still hold a roadmap for this session.
			if r, rerr := d.api.Roadmap(ctx); rerr == nil && r != nil {
				view, err = rm.Annotate(*r, rm.Selections{}, nil, "", nil), nil
			}
		}
		if errors.Is(err, onboarding.ErrNoRoadmap) {
			fmt.Fprintln(cmd.OutOrStdout(), "No roadmap yet. Run `disha` to pick a subject and goal.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}
		printRoadmap(cmd.OutOrStdout(), view)
		return nil
	},
}

var roadmapSubjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the subjects, goals and levels available for onboarding",
	Run: func(cmd *cobra.Command, args []string) {
		printCatalogue(cmd.OutOrStdout(), rm.DefaultCatalogue())
	},
}

func printRoadmap(w io.Writer, v rm.View) {
	r := v.Roadmap
	fmt.Fprintln(w, r.Title)
	if r.Description != "" {
		fmt.Fprintln(w, r.Description)
	}
	fmt.Fprintf(w, "%s · %s · %s\n", v.Selections.Subject, v.Selections.Goal, v.Selections.SkillLevel)
	fmt.Fprintf(w, "Progress: %d/%d modules (%.0f%%)\n", v.CompletedModules, r.Total(), v.OverallProgress)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	for i, m := range v.Modules {
		mark := " "
		switch m.Status {
		case rm.StatusCompleted:
			mark = "✓"
		case rm.StatusInProgress:
			mark = "▸"
		}
		score := ""
		if m.Score > 0 {
			score = fmt.Sprintf("%.0f%%", m.Score)
		}
		fmt.Fprintf(w, "%s %2d. %-40s  %-12s  %-11s  %5s\n",
			mark, i+1, truncate(m.Title, 40), m.Difficulty, m.Status, score)
		fmt.Fprintf(w, "       id: %s  topics: %s\n", m.ID, strings.Join(m.QuizTopics(), ", "))
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}

func printCatalogue(w io.Writer, c *rm.Catalogue) {
	fmt.Fprintf(w, "Levels: %s\n\n", strings.Join(c.Levels, ", "))
	for _, s := range c.Subjects {
		fmt.Fprintf(w, "%s: %s\n", s.Name, s.Description)
		for _, g := range s.Goals {
			fmt.Fprintf(w, "  %-24s  %-34s  %s, %d modules\n", g.ID, g.Title, g.Duration, g.Modules)
		}
	}
}

func init() {
	roadmapGenerateCmd.Flags().StringP("subject", "s", "", "Subject to learn (see `disha roadmap subjects`)")
	roadmapGenerateCmd.Flags().StringP("goal", "g", "", "Goal id or title for the subject")
	roadmapGenerateCmd.Flags().StringP("level", "l", "basic", "Skill level: basic, intermediate or advanced")
	_ = roadmapGenerateCmd.MarkFlagRequired("subject")
	_ = roadmapGenerateCmd.MarkFlagRequired("goal")

	roadmapCmd.AddCommand(roadmapGenerateCmd)
	roadmapCmd.AddCommand(roadmapShowCmd)
	roadmapCmd.AddCommand(roadmapSubjectsCmd)
}
