package config

import (
	"path/filepath"
	"testing"

	"retrosub/internal/job"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scheduler.Binary != "qsub" {
		t.Errorf("expected scheduler binary qsub, got %s", cfg.Scheduler.Binary)
	}
	if cfg.Dirs != (job.Range{Start: 15, End: 20}) {
		t.Errorf("unexpected default dir range: %+v", cfg.Dirs)
	}
	if cfg.Files != (job.Range{Start: 0, End: 49}) {
		t.Errorf("unexpected default file range: %+v", cfg.Files)
	}
	if cfg.Resources.MemoryMB != 8000 || cfg.Resources.Walltime != "24:00:00" {
		t.Errorf("unexpected default resources: %+v", cfg.Resources)
	}
	if cfg.Resources.Nodes != 1 || cfg.Resources.ProcsPerNode != 1 {
		t.Errorf("unexpected default allocation: %+v", cfg.Resources)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "retrosub.yaml")

	cfg := DefaultConfig()
	cfg.ActiveTarget = "open"
	cfg.LogDir = "/scratch/retro/log"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ActiveTarget != "open" {
		t.Errorf("expected ActiveTarget=open, got %s", loaded.ActiveTarget)
	}
	if loaded.LogDir != "/scratch/retro/log" {
		t.Errorf("expected LogDir=/scratch/retro/log, got %s", loaded.LogDir)
	}
	if loaded.Dirs != cfg.Dirs || loaded.Files != cfg.Files {
		t.Errorf("ranges did not survive the round trip: %+v %+v", loaded.Dirs, loaded.Files)
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should fall back to defaults: %v", err)
	}
	if cfg.Dirs.Count()*cfg.Files.Count() != 300 {
		t.Errorf("expected 300 default pairs, got %d", cfg.Dirs.Count()*cfg.Files.Count())
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RETROSUB_QSUB", "/usr/local/bin/qsub")
	t.Setenv("RETROSUB_LOG_DIR", "/tmp/retro-log")
	t.Setenv("RETROSUB_ACCOUNT", "override_acct")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Scheduler.Binary != "/usr/local/bin/qsub" {
		t.Errorf("expected overridden binary, got %s", cfg.Scheduler.Binary)
	}
	if cfg.LogDir != "/tmp/retro-log" {
		t.Errorf("expected overridden log dir, got %s", cfg.LogDir)
	}

	target, err := cfg.Active()
	if err != nil {
		t.Fatalf("Active failed after account override: %v", err)
	}
	if target.Account != "override_acct" {
		t.Errorf("expected account override_acct, got %s", target.Account)
	}
}

func TestConfig_Active(t *testing.T) {
	cfg := DefaultConfig()

	target, err := cfg.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if target.Account != "cyberlamp" || target.QOS != "cl_open" {
		t.Errorf("unexpected default target: %+v", target)
	}

	cfg.ActiveTarget = "nonexistent"
	if _, err := cfg.Active(); err == nil {
		t.Error("expected error for unresolvable active target")
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty script", func(c *Config) { c.Script = "" }},
		{"empty log dir", func(c *Config) { c.LogDir = "" }},
		{"inverted dirs", func(c *Config) { c.Dirs = job.Range{Start: 20, End: 15} }},
		{"inverted files", func(c *Config) { c.Files = job.Range{Start: 49, End: 0} }},
		{"zero nodes", func(c *Config) { c.Resources.Nodes = 0 }},
		{"zero memory", func(c *Config) { c.Resources.MemoryMB = 0 }},
		{"bad walltime", func(c *Config) { c.Resources.Walltime = "24h" }},
		{"no targets", func(c *Config) { c.Targets = nil }},
		{"bad active target", func(c *Config) { c.ActiveTarget = "missing" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_GetSubmitTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetSubmitTimeout() == 0 {
		t.Error("GetSubmitTimeout should return non-zero duration")
	}

	cfg.Scheduler.SubmitTimeout = "garbage"
	if cfg.GetSubmitTimeout() == 0 {
		t.Error("GetSubmitTimeout should fall back on parse failure")
	}
}
