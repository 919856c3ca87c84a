// Package config loads, normalizes, and validates jamsync configuration.
//
// Configuration is read from TOML, then defaults and environment overrides
// are applied and paths are expanded. Validate rejects values the pipeline
// cannot run with (thresholds outside [0, 1], unknown normalizers or output
// formats) before any worksheet is touched.
package config
