package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizdrill/internal/bootstrap"
	"github.com/at-ishikawa/quizdrill/internal/cli"
	"github.com/at-ishikawa/quizdrill/internal/selector"
	"github.com/at-ishikawa/quizdrill/internal/session"
)

func newQuizCommand() *cobra.Command {
	var (
		count     int
		all       bool
		wrongOnly bool
		userID    string
	)

	command := &cobra.Command{
		Use:   "quiz",
		Short: "Answer a randomly drawn set of questions",
		Long: `Answer a randomly drawn set of questions and record the results.

By default only questions you have never attempted are drawn. --wrong-only
drills the questions whose latest answer was wrong and takes precedence over
--all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkUser(userID, false); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if count == 0 {
				count = cfg.Quiz.DefaultCount
			}
			if count < 1 || count > cfg.Quiz.MaxCount {
				return fmt.Errorf("--count must be between 1 and %d", cfg.Quiz.MaxCount)
			}

			d, err := bootstrap.OpenDrill(cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, user := sessionContext(cmd.Context(), userID)
			if userID == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Session: %s (pass --user %s to continue this progress)\n", user, user)
			}

			drillCLI := cli.NewDrillCLI(d.Service, cmd.InOrStdin(), cmd.OutOrStdout())
			return drillCLI.Run(ctx, count, selector.Filter{AvoidSeen: !all, WrongOnly: wrongOnly})
		},
	}
	command.Flags().IntVarP(&count, "count", "n", 0, "number of questions (default from the configuration)")
	command.Flags().BoolVar(&all, "all", false, "include questions already attempted")
	command.Flags().BoolVar(&wrongOnly, "wrong-only", false, "only questions whose latest answer was wrong")
	command.Flags().StringVar(&userID, "user", os.Getenv("QUIZDRILL_USER"), "session token of the progress to use")
	return command
}

// checkUser rejects tokens NewToken could not have issued, so every ledger
// backend stores the same key.
func checkUser(userID string, required bool) error {
	if userID == "" {
		if required {
			return fmt.Errorf("--user is required")
		}
		return nil
	}
	if !session.ValidToken(userID) {
		return fmt.Errorf("--user %q is not a session token", userID)
	}
	return nil
}

// sessionContext threads userID through ctx, issuing a fresh token when empty.
func sessionContext(ctx context.Context, userID string) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if userID == "" {
		userID = session.NewToken()
	}
	return session.WithUser(ctx, userID), userID
}
