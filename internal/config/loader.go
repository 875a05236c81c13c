package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. TASKBENCH_LEVELS.
const EnvPrefix = "TASKBENCH"

// RegisterFlags defines every run flag on fs with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringP("config", "c", "", "Config file (yaml, json or toml)")
	fs.IntSlice("levels", d.Levels, "Concurrency levels")
	fs.StringSlice("workloads", d.Workloads, "Workloads to run: wait, network, file")
	fs.StringSlice("launchers", d.Launchers, "Task launchers: goroutine, os-thread, pool")
	fs.Int("warmup", d.Warmup, "Warm-up trials per case (throughput mode)")
	fs.Int("iterations", d.Iterations, "Measured trials per case (throughput mode)")

	fs.Duration("wait", d.Wait, "Duration of the wait workload")
	fs.String("url", d.URL, "Target of the network workload")
	fs.String("file", d.File, "File read by the file workload")
	fs.Int("buffer-size", d.BufferSize, "Per-task read buffer in bytes")

	fs.Int("pool-workers", d.PoolWorkers, "Workers of the file and task pools (0 = GOMAXPROCS)")
	fs.Bool("pin-workers", d.PinWorkers, "Pin task pool workers to CPU cores")
	fs.Float64("rate-limit", d.RateLimit, "Task pool admissions per second (0 = unlimited)")
	fs.Int("rate-burst", d.RateBurst, "Task pool admission burst")
	fs.Duration("trial-timeout", d.TrialTimeout, "Wall-clock cutoff per trial (0 = none)")

	fs.StringP("format", "o", d.Format, "Output format: table, json or yaml")
	fs.String("output", d.Output, "Write the report to this file instead of stdout")
	fs.String("cpuprofile", d.CPUProfile, "Write a CPU profile to this file")
	fs.String("memprofile", d.MemProfile, "Write a heap profile to this file")
	fs.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
}

// Load resolves the configuration for flags already parsed into fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	configPath := v.GetString("config")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = configPath
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.File = strings.TrimSpace(cfg.File)

	return &cfg, nil
}
