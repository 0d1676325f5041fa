package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/at-ishikawa/quizdrill/internal/config"
	"github.com/at-ishikawa/quizdrill/internal/logger"
)

var (
	configFile string
	debugMode  bool
	log        = zap.NewNop()
)

func main() {
	// A missing .env file is fine; DB_URL may come from the shell or the secrets file
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "quizdrill",
		Short:         "Drill multiple-choice questions and review wrong answers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = logger.New(logger.Options{Debug: debugMode})
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newQuizCommand(),
		newStatsCommand(),
		newResetCommand(),
		newValidateCommand(),
	)
	return rootCommand
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Log.File != "" {
		log = logger.New(logger.Options{Debug: debugMode, File: cfg.Log.File})
	}
	return cfg, nil
}
