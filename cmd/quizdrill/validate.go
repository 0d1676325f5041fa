package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizdrill/internal/question"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a question bank and list the records that would be skipped",
		Long: `Check a question bank and list the records that would be skipped.

Records with missing keys or a non-integer id are reported. Duplicate ids and
records with too few options or an invalid answer index are dropped silently
and only show up in the counts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Questions.Path
			}

			out := cmd.OutOrStdout()
			raw, err := question.ReadFile(path)
			if err != nil {
				return fmt.Errorf("question.ReadFile() > %w", err)
			}
			questions, warnings, err := question.Normalize(raw)
			if err != nil {
				return fmt.Errorf("question.Normalize() > %w", err)
			}
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			records := len(raw.([]any))
			fmt.Fprintf(out, "%d records, %d valid questions, %d reported, %d dropped silently\n",
				records, len(questions), len(warnings), records-len(questions)-len(warnings))
			if len(questions) == 0 {
				return fmt.Errorf("%s: %w: every record was skipped", path, question.ErrNoData)
			}
			return nil
		},
	}
}
