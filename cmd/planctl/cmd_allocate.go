package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
)

// settings is the optional planner settings file. JSON input is accepted as YAML.
type settings struct {
	Timezone     string                      `yaml:"timezone"`
	Availability *models.AvailabilityProfile `yaml:"availability"`
}

type allocateOptions struct {
	deliverables string
	settings     string
	now          string
	timezone     string
}

func newAllocateCmd() *cobra.Command {
	opts := &allocateOptions{}
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Propose study blocks for a deliverables file",
		Long: `Run the allocator over deliverables and print the proposed blocks with per-deliverable outcomes.

Examples:
  planctl allocate --deliverables deliverables.json
  planctl allocate --deliverables deliverables.json --settings planner.yaml --now 2024-01-09T09:00:00-05:00
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllocate(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.deliverables, "deliverables", "", "JSON file with the deliverables to plan")
	cmd.Flags().StringVar(&opts.settings, "settings", "", "YAML settings file with timezone and availability")
	cmd.Flags().StringVar(&opts.now, "now", "", "Planning instant in RFC3339 (defaults to the current time)")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "IANA timezone that defines the local day")
	_ = cmd.MarkFlagRequired("deliverables")
	return cmd
}

func runAllocate(cmd *cobra.Command, opts *allocateOptions) error {
	var deliverables []models.Deliverable
	if err := readJSONFile(opts.deliverables, &deliverables); err != nil {
		return err
	}

	cfg, err := loadSettings(opts.settings)
	if err != nil {
		return err
	}
	tz := cfg.Timezone
	if opts.timezone != "" {
		tz = opts.timezone
	}
	loc, err := loadLocation(tz)
	if err != nil {
		return err
	}

	now := time.Now()
	if opts.now != "" {
		now, err = time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	profile := models.DefaultAvailability()
	if cfg.Availability != nil {
		profile = *cfg.Availability
	}

	result := planner.Plan(deliverables, profile, now.In(loc), nil)
	return writeJSON(cmd.OutOrStdout(), result)
}

func loadSettings(path string) (settings, error) {
	var cfg settings
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
