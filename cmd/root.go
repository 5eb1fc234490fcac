package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nayidisha/disha/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "disha",
	Short:        "Adaptive learning roadmaps in the terminal",
	Long:         "Nayi Disha builds a learning roadmap for the subject and goal you pick and quizzes you module by module, adapting difficulty as you answer.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DISHA_DB env var)")
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file to load (default .env when present)")
	rootCmd.PersistentFlags().String("user", "", "Signed-in user id (overrides DISHA_USER_ID env var)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then DISHA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, fromEnv string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if fromEnv != "" {
		return fromEnv, store.EnsureDir(fromEnv)
	}
	return store.DefaultDBPath()
}
