// Package main implements the submit command: the actual batch loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"retrosub/internal/driver"
	"retrosub/internal/qsub"
)

var dryRun bool

// submitCmd runs the full submission loop
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one job per (dir, file) pair to the scheduler",
	Long: `Enumerates every (dir, file) pair in row-major order and issues one
scheduler submission per pair. Submissions are sequential and
fire-and-forget: a failure is logged and the loop moves on.

With --dry-run, prints the submission command lines instead of running
the scheduler binary.`,
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var submitter qsub.Submitter
	if dryRun {
		submitter = &qsub.NopSubmitter{Binary: cfg.Scheduler.Binary, Out: os.Stdout}
	} else {
		submitter = qsub.NewClient(cfg.Scheduler.Binary, cfg.GetSubmitTimeout())
	}

	d, err := driver.New(cfg, submitter, logger)
	if err != nil {
		return err
	}

	// Ctrl-C stops between submissions; jobs already handed to the
	// scheduler stay queued.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := d.Run(ctx)
	if err != nil {
		return fmt.Errorf("batch interrupted after %d submissions: %w", summary.Submitted, err)
	}

	fmt.Printf("Batch %s: %d submitted, %d failed in %s\n",
		summary.BatchID, summary.Submitted, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	return nil
}

func init() {
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print submissions without running the scheduler binary")
	rootCmd.AddCommand(submitCmd)
}
