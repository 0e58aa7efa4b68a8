package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"MoodScanner/internal/app"
	"MoodScanner/internal/config"
	"MoodScanner/internal/domain"
	"MoodScanner/internal/logging"
	"MoodScanner/internal/usecase"
)

var cfgFile string

// NewRootCmd builds the moodscanner command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "moodscanner",
		Short:         "Label news articles by reader mood and draft the public mood report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml (default $MOOD_SCANNER_CONFIG)")

	root.AddCommand(newRunCmd(), newSummarizeCmd(), newScheduleCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var skipReport bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and write the prompt and report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, application *app.Application) error {
				res, err := application.Run(ctx, usecase.RunOptions{SkipReport: skipReport})
				var reportErr *usecase.ReportError
				if err != nil && !errors.As(err, &reportErr) {
					return err
				}
				printRun(cmd.OutOrStdout(), res)
				if reportErr != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Report generation failed: %v\n", reportErr.Err)
					return reportErr
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&skipReport, "skip-report", false, "write the prompt only, without calling the language model")
	return cmd
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Refresh the article and post summary pools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, application *app.Application) error {
				res, err := application.Summarize(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summaries stored: %d posts, %d articles (%d failed)\n", res.Posts, res.Articles, res.Failed)
				return nil
			})
		},
	}
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, application *app.Application) error {
				return application.Schedule(ctx)
			})
		},
	}
}

func withApp(cmd *cobra.Command, fn func(context.Context, *app.Application) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(cfgFile)
	logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	logger.Info("configuration loaded", "config", cfg.String())

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(ctx, application)
}

func printRun(w io.Writer, res usecase.RunResult) {
	fmt.Fprintf(w, "Run %s: %d articles\n", res.RunID, len(res.Articles))
	for _, m := range domain.Moods {
		fmt.Fprintf(w, "  %-10s %d\n", m, res.Histogram[m])
	}
	for source, err := range res.FailedSources {
		fmt.Fprintf(w, "  source %s failed: %v\n", source, err)
	}
	if res.PromptPath != "" {
		fmt.Fprintf(w, "Prompt: %s\n", res.PromptPath)
	}
	if res.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", res.ReportPath)
	}
}
