// Package main implements the plan and targets commands: inspection of
// what submit would do, without touching the scheduler.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"retrosub/internal/driver"
	"retrosub/internal/qsub"
)

var planCountOnly bool

// planCmd prints the enumeration without submitting
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the submission plan without submitting",
	Long: `Lists every job the submit command would issue, in submission order:
job name, log paths, and the command body. Use --count for just the
total.`,
	RunE: runPlan,
}

// targetsCmd lists configured submission targets
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List configured submission targets",
	RunE:  runTargets,
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := driver.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	reqs := d.Requests()
	if planCountOnly {
		fmt.Println(len(reqs))
		return nil
	}

	for _, req := range reqs {
		fmt.Printf("%-8s %s %s  <<< %q\n",
			req.Name, cfg.Scheduler.Binary, strings.Join(qsub.BuildArgs(req), " "), req.Command)
	}
	fmt.Printf("Total: %d jobs (%s, account %s)\n",
		len(reqs), cfg.Resources.Walltime, reqs[0].Account)
	return nil
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, t := range cfg.Targets {
		marker := " "
		if t.Name == cfg.ActiveTarget {
			marker = "*"
		}
		if t.QOS != "" {
			fmt.Printf("%s %-12s account=%s qos=%s\n", marker, t.Name, t.Account, t.QOS)
		} else {
			fmt.Printf("%s %-12s account=%s\n", marker, t.Name, t.Account)
		}
	}
	fmt.Println("\nEdit active_target in the config file to switch. Only the")
	fmt.Println("account and QoS of each submission change; the enumeration and")
	fmt.Println("resource request do not.")
	return nil
}

func init() {
	planCmd.Flags().BoolVar(&planCountOnly, "count", false, "Print only the number of jobs")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(targetsCmd)
}
