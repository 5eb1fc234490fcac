package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nayidisha/disha/internal/app"
	"github.com/nayidisha/disha/internal/onboarding"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [module-id]",
	Short: "Start or resume the quiz for a roadmap module",
	Long:  "Opens the quiz for the given module, or for the next unfinished module when none is given. Leaving the quiz returns to the roadmap.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		svc := d.onboarding()
		view, err := svc.Load(ctx)
		if errors.Is(err, onboarding.ErrNoRoadmap) {
			return fmt.Errorf("%w (run `disha` or `disha roadmap generate`)", err)
		}
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}

		m, ok := view.NextModule()
		if len(args) == 1 {
			m, ok = view.Find(args[0])
			if !ok {
				return fmt.Errorf("module %q is not on your roadmap", args[0])
			}
		}
		if !ok {
			fmt.Println("Every module is complete. Pass a module id to practice one again.")
			return nil
		}

		if err := svc.BeginModule(ctx, m.ID); err != nil {
			return err
		}
		quiz, err := d.quizScreen(ctx)(m)
		if err != nil {
			return fmt.Errorf("start quiz: %w", err)
		}
		return app.Run(d.home(ctx, svc), quiz)
	},
}
