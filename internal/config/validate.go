package config

import (
	"errors"
	"fmt"

	"jamsync/internal/textmatch"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be between 0 and 1")
	}
	if _, err := textmatch.NormalizerByName(c.Matching.Normalizer); err != nil {
		return fmt.Errorf("matching.normalizer: %w", err)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Workers <= 0 {
		return errors.New("sync.workers must be positive")
	}
	switch c.Sync.Format {
	case "auto", "json", "jsonl":
	default:
		return fmt.Errorf("sync.format: unsupported value %q (use auto, json, or jsonl)", c.Sync.Format)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
