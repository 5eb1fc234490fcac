package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the local session, roadmap and quiz progress",
	Long:  "Clears the session id, cached roadmap and every quiz snapshot and result on this device. With --remote, also deletes the signed-in user's stored progress. Local answer history is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")
		yes, _ := cmd.Flags().GetBool("yes")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if remote && d.progressErr != nil {
			return d.progressErr
		}
		if remote && (d.progress == nil || !d.cfg.SignedIn()) {
			return fmt.Errorf("--remote needs a signed-in user and DISHA_PROGRESS_DSN")
		}

		if !yes {
			what := "your local session"
			if remote {
				what = "your local session and remote progress for " + d.cfg.UserID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "This clears %s. Continue? [y/N] ", what)
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := d.onboarding().Reset(cmd.Context(), remote); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reset complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("remote", false, "Also delete remote progress for the signed-in user")
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
