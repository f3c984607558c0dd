// Package config holds all retrosub configuration: scheduler binary,
// reconstruction script, index ranges, resource request, and the set of
// submission targets (account + optional QoS) with exactly one active.
//
// The original workflow kept the alternative accounts as commented-out
// lines in the submission script; here they are data, and the choice of
// which is live is an explicit config field instead of an edit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"retrosub/internal/job"
)

// DefaultPath is the config file consulted when --config is not given.
const DefaultPath = "retrosub.yaml"

// Target is one submission destination: a scheduler allocation, with an
// optional quality-of-service class.
type Target struct {
	Name    string `yaml:"name"`
	Account string `yaml:"account"`
	QOS     string `yaml:"qos,omitempty"`
}

// SchedulerConfig configures how the submission binary is invoked.
type SchedulerConfig struct {
	// Binary is the submission command, e.g. "qsub".
	Binary string `yaml:"binary"`

	// SubmitTimeout bounds one submission call (not the job's walltime).
	SubmitTimeout string `yaml:"submit_timeout"`
}

// Config is the full retrosub configuration.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Script is the per-file reconstruction executable. It is invoked by
	// the scheduled job with the dir and file indices as arguments.
	Script string `yaml:"script"`

	// LogDir is the directory that receives the per-pair .log/.err files.
	LogDir string `yaml:"log_dir"`

	// Dirs and Files are the inclusive index ranges to enumerate.
	Dirs  job.Range `yaml:"dirs"`
	Files job.Range `yaml:"files"`

	Resources job.Resources `yaml:"resources"`

	// Targets lists every known submission destination; ActiveTarget
	// names the one to use. Switching targets changes only the account
	// and QoS of each submission, never the enumeration or resources.
	Targets      []Target `yaml:"targets"`
	ActiveTarget string   `yaml:"active_target"`
}

// DefaultConfig returns the configuration matching the original batch run:
// directories 15-20, files 0-49, one node / one process, 8000 MB, 24 hours.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Binary:        "qsub",
			SubmitTimeout: "30s",
		},
		Script: "/gpfs/group/dfc13/default/retro/reco_retro.sh",
		LogDir: "log",
		Dirs:   job.Range{Start: 15, End: 20},
		Files:  job.Range{Start: 0, End: 49},
		Resources: job.Resources{
			Nodes:        1,
			ProcsPerNode: 1,
			MemoryMB:     8000,
			Walltime:     "24:00:00",
		},
		Targets: []Target{
			{Name: "cyberlamp", Account: "cyberlamp", QOS: "cl_open"},
			{Name: "open", Account: "open"},
			{Name: "dfc13", Account: "dfc13_b_g_sc_default"},
		},
		ActiveTarget: "cyberlamp",
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RETROSUB_QSUB"); v != "" {
		c.Scheduler.Binary = v
	}
	if v := os.Getenv("RETROSUB_SCRIPT"); v != "" {
		c.Script = v
	}
	if v := os.Getenv("RETROSUB_LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("RETROSUB_ACCOUNT"); v != "" {
		// An account override becomes an ad-hoc target so the active
		// selection stays resolvable.
		c.Targets = append(c.Targets, Target{Name: "env", Account: v})
		c.ActiveTarget = "env"
	}
}

// Active resolves the active submission target.
func (c *Config) Active() (Target, error) {
	for _, t := range c.Targets {
		if t.Name == c.ActiveTarget {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("active_target %q not found among %d configured targets",
		c.ActiveTarget, len(c.Targets))
}

// GetSubmitTimeout returns the per-submission timeout as a duration.
func (c *Config) GetSubmitTimeout() time.Duration {
	d, err := time.ParseDuration(c.Scheduler.SubmitTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

var walltimeRe = regexp.MustCompile(`^\d{1,3}:[0-5]\d:[0-5]\d$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Scheduler.Binary == "" {
		return fmt.Errorf("scheduler.binary is required")
	}
	if c.Script == "" {
		return fmt.Errorf("script is required")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir is required")
	}
	if err := c.Dirs.Validate(); err != nil {
		return fmt.Errorf("dirs: %w", err)
	}
	if err := c.Files.Validate(); err != nil {
		return fmt.Errorf("files: %w", err)
	}
	if c.Resources.Nodes <= 0 || c.Resources.ProcsPerNode <= 0 {
		return fmt.Errorf("resources: nodes and procs_per_node must be positive")
	}
	if c.Resources.MemoryMB <= 0 {
		return fmt.Errorf("resources: memory_mb must be positive")
	}
	if !walltimeRe.MatchString(c.Resources.Walltime) {
		return fmt.Errorf("resources: walltime %q is not hh:mm:ss", c.Resources.Walltime)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one submission target is required")
	}
	if _, err := c.Active(); err != nil {
		return err
	}
	return nil
}
