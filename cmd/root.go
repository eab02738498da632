/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/bootstrap/config"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "fyp",
	Short:        "Switchgear inspection ingestion and approval service",
	Long:         "Ingest switchgear inspection workbooks, reconcile them against stored assets and review pending changes.",
	SilenceUsage: true,
	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger := slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "fyp"))

	// --log-level and --log-format are only known after flag parsing.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return configureLogger(cmd, config.LogConfig{})
	}

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

// configureLogger installs the command logger. Explicit flags win over the
// log section of the config file.
func configureLogger(cmd *cobra.Command, fromConfig config.LogConfig) error {
	level := fromConfig.Level
	if level == "" || cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	format := fromConfig.Format
	if format == "" || cmd.Flags().Changed("log-format") {
		format = logFormat
	}

	logger, err := logging.NewLogger(cmd.ErrOrStderr(), level, format)
	if err != nil {
		return errs.Wrap(err, "build logger")
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return nil
}

func init() {
	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
}
