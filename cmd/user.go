package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nayidisha/disha/internal/progress"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the signed-in user's remote profile",
}

var userSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create or update the remote profile for --user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		photo, _ := cmd.Flags().GetString("photo")
		provider, _ := cmd.Flags().GetString("provider")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if d.progressErr != nil {
			return d.progressErr
		}
		if d.progress == nil || !d.cfg.SignedIn() {
			return fmt.Errorf("user sync needs a signed-in user and DISHA_PROGRESS_DSN")
		}
		err = d.progress.SyncUser(cmd.Context(), progress.UserProfile{
			UID:         d.cfg.UserID,
			Email:       email,
			DisplayName: name,
			PhotoURL:    photo,
			Provider:    provider,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile for %s synced.\n", d.cfg.UserID)
		return nil
	},
}

func init() {
	userSyncCmd.Flags().String("email", "", "Email address")
	userSyncCmd.Flags().String("name", "", "Display name")
	userSyncCmd.Flags().String("photo", "", "Profile photo URL")
	userSyncCmd.Flags().String("provider", "password", "Auth provider the id comes from")

	userCmd.AddCommand(userSyncCmd)
}
