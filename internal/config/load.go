package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// fileOverrides is the shape of the optional YAML config file, the same
// format the pack's Silvus mock module uses for its own configuration.
type fileOverrides struct {
	BolusWaitBaseMs              *int64 `yaml:"bolus_wait_base_ms"`
	BolusWaitPerUnitMs           *int64 `yaml:"bolus_wait_per_unit_ms"`
	PrimeWaitBaseMs              *int64 `yaml:"prime_wait_base_ms"`
	PrimeWaitPerUnitMs           *int64 `yaml:"prime_wait_per_unit_ms"`
	ConversationAcquireTimeoutMs *int64 `yaml:"conversation_acquire_timeout_ms"`
}

// Load merges DefaultPollConfig() + env overrides (PODMGR_POLL_*) +
// an optional podmanager.yaml, then validates the result.
func Load(configPath string) (*PollConfig, error) {
	cfg := DefaultPollConfig()

	applyEnvOverrides(cfg)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := loadFromFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("config: load %s: %w", configPath, err)
			}
			mergeFileOverrides(cfg, file)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *PollConfig) {
	if v := GetEnvInt64("PODMGR_POLL_BOLUS_BASE_MS", -1); v >= 0 {
		cfg.BolusWaitBaseMs = v
	}
	if v := GetEnvInt64("PODMGR_POLL_BOLUS_PER_UNIT_MS", -1); v >= 0 {
		cfg.BolusWaitPerUnitMs = v
	}
	if v := GetEnvInt64("PODMGR_POLL_PRIME_BASE_MS", -1); v >= 0 {
		cfg.PrimeWaitBaseMs = v
	}
	if v := GetEnvInt64("PODMGR_POLL_PRIME_PER_UNIT_MS", -1); v >= 0 {
		cfg.PrimeWaitPerUnitMs = v
	}
	if v := GetEnvInt64("PODMGR_POLL_CONVERSATION_ACQUIRE_TIMEOUT_MS", -1); v >= 0 {
		cfg.ConversationAcquireTimeoutMs = v
	}
}

func loadFromFile(path string) (*fileOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileOverrides
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func mergeFileOverrides(cfg *PollConfig, f *fileOverrides) {
	if f.BolusWaitBaseMs != nil {
		cfg.BolusWaitBaseMs = *f.BolusWaitBaseMs
	}
	if f.BolusWaitPerUnitMs != nil {
		cfg.BolusWaitPerUnitMs = *f.BolusWaitPerUnitMs
	}
	if f.PrimeWaitBaseMs != nil {
		cfg.PrimeWaitBaseMs = *f.PrimeWaitBaseMs
	}
	if f.PrimeWaitPerUnitMs != nil {
		cfg.PrimeWaitPerUnitMs = *f.PrimeWaitPerUnitMs
	}
	if f.ConversationAcquireTimeoutMs != nil {
		cfg.ConversationAcquireTimeoutMs = *f.ConversationAcquireTimeoutMs
	}
}

// GetEnvInt64 returns an environment variable parsed as int64, or
// defaultValue if unset or unparsable.
func GetEnvInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var parsed int64
	if _, err := fmt.Sscanf(v, "%d", &parsed); err != nil {
		return defaultValue
	}
	return parsed
}
