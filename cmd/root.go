package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "todo-service.com/todo-service/internal/configs"
)

var rootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "Todo list service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	os.Exit(run(logrus.StandardLogger(), os.Args[1:]))
}

// run executes the command line and returns the process exit code.
func run(logger logrus.FieldLogger, args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

func loadConfig() (config.Config, *logrus.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}

	if envErr != nil {
		logger.Debug(".env file not found, using environment variables")
	}

	return cfg, logger, nil
}
