package main

import (
	"github.com/spf13/cobra"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
)

type diffOptions struct {
	old      string
	new      string
	cap      int
	timezone string
}

type diffReport struct {
	Days    []models.DayChanges  `json:"days"`
	Summary models.ChangeSummary `json:"summary"`
}

func newDiffCmd() *cobra.Command {
	opts := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Explain the changes between two plan snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.old, "old", "", "JSON file with the previous plan blocks")
	cmd.Flags().StringVar(&opts.new, "new", "", "JSON file with the next plan blocks")
	cmd.Flags().IntVar(&opts.cap, "cap", models.DefaultAvailability().MaxMinutesPerDay, "Daily minute cap used to flag overloaded days (0 disables)")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "IANA timezone that defines the local day")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func runDiff(cmd *cobra.Command, opts *diffOptions) error {
	var prev, next []models.PlanBlock
	if err := readJSONFile(opts.old, &prev); err != nil {
		return err
	}
	if err := readJSONFile(opts.new, &next); err != nil {
		return err
	}
	loc, err := loadLocation(opts.timezone)
	if err != nil {
		return err
	}

	days := planner.Diff(prev, next, opts.cap, loc)
	return writeJSON(cmd.OutOrStdout(), diffReport{Days: days, Summary: planner.Summarize(days)})
}
