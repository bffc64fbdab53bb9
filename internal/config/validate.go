package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateRunStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if _, err := regexp.Compile("(?i)^(?:" + c.Matching.SkipPattern + ")$"); err != nil {
		return fmt.Errorf("matching.skip_pattern %q is not a valid regular expression: %w", c.Matching.SkipPattern, err)
	}
	return nil
}

func (c *Config) validateRunStore() error {
	if c.RunStore.Enabled && strings.TrimSpace(c.RunStore.Path) == "" {
		return errors.New("run_store.path must be set when run_store.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
