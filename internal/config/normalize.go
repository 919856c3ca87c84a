package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMatching(); err != nil {
		return err
	}
	if err := c.normalizeSync(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Metrics.TextfilePath, err = expandPath(strings.TrimSpace(c.Metrics.TextfilePath)); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() error {
	if value, ok := os.LookupEnv("JAMSYNC_MATCH_THRESHOLD"); ok && strings.TrimSpace(value) != "" {
		threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("JAMSYNC_MATCH_THRESHOLD: %w", err)
		}
		c.Matching.Threshold = threshold
	}
	c.Matching.Normalizer = strings.ToLower(strings.TrimSpace(c.Matching.Normalizer))
	if c.Matching.Normalizer == "" {
		c.Matching.Normalizer = defaultNormalizer
	}
	c.Matching.RequiredTag = strings.TrimSpace(c.Matching.RequiredTag)
	if c.Matching.CacheTTLSeconds < 0 {
		c.Matching.CacheTTLSeconds = 0
	}
	return nil
}

func (c *Config) normalizeSync() error {
	c.Sync.Format = strings.ToLower(strings.TrimSpace(c.Sync.Format))
	if c.Sync.Format == "" {
		c.Sync.Format = defaultOutputFormat
	}
	outputs := make([]string, 0, len(c.Sync.Outputs))
	seen := make(map[string]struct{}, len(c.Sync.Outputs))
	for _, output := range c.Sync.Outputs {
		expanded, err := expandPath(strings.TrimSpace(output))
		if err != nil {
			return fmt.Errorf("sync.outputs: %w", err)
		}
		if expanded == "" {
			continue
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		outputs = append(outputs, expanded)
	}
	c.Sync.Outputs = outputs
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("JAMSYNC_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
