package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/utkarsh5026/taskbench/workload"
)

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := parse(t)
	d := Default()

	if !slices.Equal(cfg.Levels, []int{1, 10, 100, 1000, 4000}) {
		t.Errorf("unexpected levels %v", cfg.Levels)
	}
	if cfg.Wait != d.Wait || cfg.URL != d.URL || cfg.BufferSize != d.BufferSize {
		t.Errorf("unexpected workload defaults %+v", cfg)
	}
	if cfg.Format != "table" || cfg.LogLevel != "info" {
		t.Errorf("unexpected output defaults %q %q", cfg.Format, cfg.LogLevel)
	}
}

func TestLoad_Flags(t *testing.T) {
	cfg := parse(t,
		"--levels", "1,10",
		"--workloads", "wait,file",
		"--launchers", "goroutine,pool",
		"--wait", "5ms",
		"--file", " /tmp/data ",
		"--rate-limit", "100",
		"--rate-burst", "10",
		"-o", "json",
	)

	if !slices.Equal(cfg.Levels, []int{1, 10}) {
		t.Errorf("unexpected levels %v", cfg.Levels)
	}
	if !slices.Equal(cfg.Workloads, []string{"wait", "file"}) {
		t.Errorf("unexpected workloads %v", cfg.Workloads)
	}
	if !slices.Equal(cfg.Launchers, []string{"goroutine", "pool"}) {
		t.Errorf("unexpected launchers %v", cfg.Launchers)
	}
	if cfg.Wait != 5*time.Millisecond {
		t.Errorf("unexpected wait %v", cfg.Wait)
	}
	if cfg.File != "/tmp/data" {
		t.Errorf("expected trimmed file path, got %q", cfg.File)
	}
	if cfg.RateLimit != 100 || cfg.RateBurst != 10 {
		t.Errorf("unexpected rate %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.Format != "json" {
		t.Errorf("unexpected format %q", cfg.Format)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskbench.yaml")
	content := strings.Join([]string{
		"levels: [2, 4]",
		"workloads: [network]",
		"iterations: 9",
		"url: http://127.0.0.1:9090/",
		"trial-timeout: 30s",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("file values apply", func(t *testing.T) {
		cfg := parse(t, "--config", path)
		if !slices.Equal(cfg.Levels, []int{2, 4}) {
			t.Errorf("unexpected levels %v", cfg.Levels)
		}
		if cfg.Iterations != 9 || cfg.URL != "http://127.0.0.1:9090/" || cfg.TrialTimeout != 30*time.Second {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.ConfigFile != path {
			t.Errorf("expected config file %q, got %q", path, cfg.ConfigFile)
		}
	})

	t.Run("flags override the file", func(t *testing.T) {
		cfg := parse(t, "--config", path, "--iterations", "3")
		if cfg.Iterations != 3 {
			t.Errorf("expected flag to win, got %d", cfg.Iterations)
		}
		if cfg.URL != "http://127.0.0.1:9090/" {
			t.Errorf("expected file value to survive, got %q", cfg.URL)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(fs)
		_ = fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")})
		if _, err := Load(fs); err == nil {
			t.Error("expected a missing config file to fail")
		}
	})
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TASKBENCH_WARMUP", "7")
	t.Setenv("TASKBENCH_BUFFER_SIZE", "1024")

	cfg := parse(t)
	if cfg.Warmup != 7 {
		t.Errorf("expected warmup from env, got %d", cfg.Warmup)
	}
	if cfg.BufferSize != 1024 {
		t.Errorf("expected buffer size from env, got %d", cfg.BufferSize)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.File = "/tmp/data"

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "no levels", modify: func(c *Config) { c.Levels = nil }, want: "at least one level"},
		{name: "zero level", modify: func(c *Config) { c.Levels = []int{0} }, want: "level 0"},
		{name: "unknown workload", modify: func(c *Config) { c.Workloads = []string{"gpu"} }, want: "unknown kind"},
		{name: "file without path", modify: func(c *Config) { c.File = "" }, want: "needs --file"},
		{name: "no file needed", modify: func(c *Config) { c.File = ""; c.Workloads = []string{"wait"} }},
		{name: "unknown launcher", modify: func(c *Config) { c.Launchers = []string{"fiber"} }, want: "unknown launcher"},
		{name: "zero iterations", modify: func(c *Config) { c.Iterations = 0 }, want: "iterations"},
		{name: "rate without burst", modify: func(c *Config) { c.RateLimit = 5 }, want: "rate-burst"},
		{name: "bad format", modify: func(c *Config) { c.Format = "xml" }, want: "unknown format"},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, want: "log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Levels = slices.Clone(valid.Levels)
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestSuite(t *testing.T) {
	cfg := Default()
	cfg.Workloads = []string{"file", "wait"}
	cfg.File = "/tmp/data"

	sc, err := cfg.Suite()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(sc.Kinds, []workload.Kind{workload.KindFileRead, workload.KindWait}) {
		t.Errorf("unexpected kinds %v", sc.Kinds)
	}
	if sc.FilePath != "/tmp/data" || sc.Iterations != cfg.Iterations {
		t.Errorf("values not carried over: %+v", sc)
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v", in, got, err)
		}
	}
}
