package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	if err := c.normalizeRunStore(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	if c.Paths.OutputDir == "" {
		if value, ok := os.LookupEnv("BALLOTLINK_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.OutputDir = strings.TrimSpace(value)
		} else {
			c.Paths.OutputDir = defaultOutputDir
		}
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.OverridesPath = strings.TrimSpace(c.Paths.OverridesPath)
	if c.Paths.OverridesPath, err = expandPath(c.Paths.OverridesPath); err != nil {
		return fmt.Errorf("paths.overrides_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.SkipPattern = strings.TrimSpace(c.Matching.SkipPattern)
	if c.Matching.SkipPattern == "" {
		if value, ok := os.LookupEnv("BALLOTLINK_SKIP_PATTERN"); ok && strings.TrimSpace(value) != "" {
			c.Matching.SkipPattern = strings.TrimSpace(value)
		} else {
			c.Matching.SkipPattern = DefaultSkipPattern
		}
	}
	if len(c.Matching.SkipChoices) == 0 {
		return
	}
	choices := make([]string, 0, len(c.Matching.SkipChoices))
	seen := make(map[string]struct{}, len(c.Matching.SkipChoices))
	for _, choice := range c.Matching.SkipChoices {
		normalized := strings.TrimSpace(choice)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		choices = append(choices, normalized)
	}
	c.Matching.SkipChoices = choices
}

func (c *Config) normalizeRunStore() error {
	var err error
	c.RunStore.Path = strings.TrimSpace(c.RunStore.Path)
	if c.RunStore.Enabled && c.RunStore.Path == "" {
		c.RunStore.Path = defaultRunStorePath
	}
	if c.RunStore.Path, err = expandPath(c.RunStore.Path); err != nil {
		return fmt.Errorf("run_store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
