package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "color-contest"

var version = "dev"

var globalFlags = struct {
	debug      bool
	configFile string
}{}

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

func newLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	return logger
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Color guessing contest service",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.configFile, "config", "c", "", "path to config file")

	rootCmd.AddCommand(
		serveCommand(),
		describeCommand(),
		randomCommand(),
		rankCommand(),
		referenceCommand(),
		exportCommand(),
		importCommand(),
		resetCommand(),
		hashPasswordCommand(),
	)
	return rootCmd
}

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// setMaxProcs aligns GOMAXPROCS with the container CPU quota
func setMaxProcs(logger *slog.Logger) {
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err)
	}
}
