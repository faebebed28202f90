package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"snapsort/internal/config"
	"snapsort/internal/logging"
	"snapsort/internal/organizer"
)

type runFlags struct {
	source      string
	dest        string
	copyMode    bool
	dryRun      bool
	concurrency int
	cleanup     bool
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "Source directory to scan")
	cmd.Flags().StringVarP(&flags.dest, "dest", "d", "", "Destination library root")
	cmd.Flags().BoolVar(&flags.copyMode, "copy", false, "Copy files instead of moving them")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 0, "Number of worker goroutines")
	cmd.Flags().BoolVar(&flags.cleanup, "cleanup", false, "Remove source directories emptied by moves")
}

func newRunCommand(configFlag *string) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [source] [dest]",
		Short: "Organize media files into the destination library",
		Long: "Scan the source tree, resolve a capture date for every media file, and\n" +
			"place each one under <dest>/<year>/<month>/. Files with no recognizable\n" +
			"format or date land in <dest>/Unknown/.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, *configFlag, flags, args)
		},
	}
	addRunFlags(cmd, flags)
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Log intended actions without touching any file")
	return cmd
}

func newPlanCommand(configFlag *string) *cobra.Command {
	flags := &runFlags{dryRun: true}
	cmd := &cobra.Command{
		Use:   "plan [source] [dest]",
		Short: "Preview a run without moving anything",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, *configFlag, flags, args)
		},
	}
	addRunFlags(cmd, flags)
	return cmd
}

func executeRun(cmd *cobra.Command, configPath string, flags *runFlags, args []string) error {
	cfg, err := buildRunConfig(configPath, flags, args)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, results, runErr := organizer.New(cfg, logger).Run(ctx)

	out := cmd.OutOrStdout()
	for _, result := range results {
		if cfg.Organize.DryRun || result.Failed() || result.Reason != "" {
			fmt.Fprintln(out, organizer.Describe(result))
		}
	}
	fmt.Fprintln(out, renderSummary(summary))

	if runErr != nil {
		return fmt.Errorf("run %s aborted: %w", summary.RunID, runErr)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("run %s finished with %d failed file(s)", summary.RunID, summary.Failed)
	}
	return nil
}

func buildRunConfig(configPath string, flags *runFlags, args []string) (*config.Config, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 && flags.source == "" {
		flags.source = args[0]
	}
	if len(args) > 1 && flags.dest == "" {
		flags.dest = args[1]
	}

	if strings.TrimSpace(flags.source) != "" {
		expanded, err := config.ExpandPath(flags.source)
		if err != nil {
			return nil, err
		}
		cfg.Paths.SourceDir = expanded
	}
	if strings.TrimSpace(flags.dest) != "" {
		expanded, err := config.ExpandPath(flags.dest)
		if err != nil {
			return nil, err
		}
		cfg.Paths.DestDir = expanded
	}
	if flags.copyMode {
		cfg.Organize.Mode = string(config.ModeCopy)
	}
	if flags.dryRun {
		cfg.Organize.DryRun = true
	}
	if flags.concurrency > 0 {
		cfg.Organize.Concurrency = flags.concurrency
	}
	if flags.cleanup {
		cfg.Organize.CleanupEmptyDirs = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
