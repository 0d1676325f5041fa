package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizdrill/internal/bootstrap"
)

func newStatsCommand() *cobra.Command {
	var (
		userID string
		year   int
		month  int
		format = FormatText
	)

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show the progress of a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkUser(userID, true); err != nil {
				return err
			}
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
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
			progress, err := d.Service.Stats(ctx)
			if err != nil {
				return fmt.Errorf("drill.Stats() > %w", err)
			}
			periods, err := d.Service.History(ctx, year, month)
			if err != nil {
				return fmt.Errorf("drill.History() > %w", err)
			}
			return writeStats(cmd.OutOrStdout(), format, progress, periods)
		},
	}
	command.Flags().StringVar(&userID, "user", os.Getenv("QUIZDRILL_USER"), "session token of the progress to show")
	command.Flags().IntVar(&year, "year", 0, "only show months of this year")
	command.Flags().IntVar(&month, "month", 0, "only show this month (requires --year)")
	command.Flags().Var(&format, "format", "output format: text, json or yaml")
	return command
}
