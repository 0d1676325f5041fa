package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizdrill/internal/bootstrap"
)

func newResetCommand() *cobra.Command {
	var userID string

	command := &cobra.Command{
		Use:   "reset",
		Short: "Delete every recorded answer of a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkUser(userID, true); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := bootstrap.OpenDrill(cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, _ := sessionContext(cmd.Context(), userID)
			if err := d.Service.Reset(ctx); err != nil {
				return fmt.Errorf("drill.Reset() > %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
			return nil
		},
	}
	command.Flags().StringVar(&userID, "user", os.Getenv("QUIZDRILL_USER"), "session token of the progress to delete")
	return command
}
