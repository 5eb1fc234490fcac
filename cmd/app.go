package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nayidisha/disha/internal/app"
	"github.com/nayidisha/disha/internal/onboarding"
	qz "github.com/nayidisha/disha/internal/quiz"
	rm "github.com/nayidisha/disha/internal/roadmap"
	"github.com/nayidisha/disha/internal/screen"
	onboardscreen "github.com/nayidisha/disha/internal/screens/onboarding"
	quizscreen "github.com/nayidisha/disha/internal/screens/quiz"
	"github.com/nayidisha/disha/internal/screens/results"
	roadmapscreen "github.com/nayidisha/disha/internal/screens/roadmap"
)

// runApp opens dependencies and launches the TUI on the roadmap, which
// hands over to onboarding when no roadmap exists yet.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	return app.Run(d.home(ctx, d.onboarding()))
}

// home builds the roadmap screen. Its onboarding fallback returns to a
// fresh roadmap screen once a roadmap has been generated.
func (d *deps) home(ctx context.Context, svc *onboarding.Service) screen.Screen {
	var build func() screen.Screen
	build = func() screen.Screen {
		onboard := onboardscreen.New(ctx, svc, rm.DefaultCatalogue(), build)
		return roadmapscreen.New(ctx, svc, d.quizScreen(ctx), onboard)
	}
	return build()
}

// quizScreen returns the factory the roadmap uses to open a module.
func (d *deps) quizScreen(ctx context.Context) roadmapscreen.QuizFunc {
	return func(m rm.ModuleView) (screen.Screen, error) {
		ctrl, err := d.newController(ctx, m.Module)
		if err != nil {
			return nil, err
		}
		return quizscreen.New(ctx, ctrl, func(res qz.Results) screen.Screen {
			return results.New(res, ctrl)
		}), nil
	}
}
