package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config location, relative to the working dir.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                       string   `yaml:"port"`
	LogLevel                   string   `yaml:"logLevel"`
	SeedPath                   string   `yaml:"seedPath"`
	WatchSeed                  bool     `yaml:"watchSeed"`
	CurrentUserID              string   `yaml:"currentUserId"`
	RedisAddr                  string   `yaml:"redisAddr"`
	RedisPassword              string   `yaml:"redisPassword"`
	EventChannelPrefix         string   `yaml:"eventChannelPrefix"`
	TrustedProxyCIDRs          []string `yaml:"trustedProxyCidrs"`
	MutationRateLimitPerMinute int      `yaml:"mutationRateLimitPerMinute"`
	RandomSeed                 uint64   `yaml:"randomSeed"`
}

// Load reads config from path (defaults to config.yaml) and applies
// GIFTEM_* environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("GIFTEM_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("GIFTEM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("GIFTEM_SEED_PATH"); v != "" {
		cfg.SeedPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("GIFTEM_WATCH_SEED"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.WatchSeed = b
		}
	}
	if v := os.Getenv("GIFTEM_CURRENT_USER_ID"); v != "" {
		cfg.CurrentUserID = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("GIFTEM_EVENT_CHANNEL_PREFIX"); v != "" {
		cfg.EventChannelPrefix = strings.TrimSpace(v)
	}
	if v := os.Getenv("GIFTEM_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("GIFTEM_MUTATION_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.MutationRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("GIFTEM_RANDOM_SEED"); v != "" {
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.RandomSeed = n
		}
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or GIFTEM_PORT)")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("config: port must be numeric, got %q", cfg.Port)
	}
	if cfg.WatchSeed && strings.TrimSpace(cfg.SeedPath) == "" {
		return errors.New("config: watchSeed requires seedPath")
	}
	if cfg.MutationRateLimitPerMinute < 0 {
		return errors.New("config: mutationRateLimitPerMinute must be >= 0")
	}
	if cfg.MutationRateLimitPerMinute > 0 && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: mutationRateLimitPerMinute requires redisAddr")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
