package config

const (
	defaultConfigPath      = "~/.config/jamsync/config.toml"
	defaultStateDir        = "~/.local/share/jamsync"
	defaultLogDir          = "~/.local/share/jamsync/logs"
	defaultMatchThreshold  = 0.8
	defaultNormalizer      = "minimal"
	defaultCacheTTLSeconds = 600
	defaultSyncWorkers     = 4
	defaultOutputFormat    = "auto"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 20
	defaultLogMaxBackups   = 5
	defaultLogMaxAgeDays   = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Sheets: Sheets{
			SkipFirstWorksheet: true,
		},
		Matching: Matching{
			Threshold:       defaultMatchThreshold,
			Normalizer:      defaultNormalizer,
			CacheTTLSeconds: defaultCacheTTLSeconds,
		},
		Sync: Sync{
			Workers: defaultSyncWorkers,
			Format:  defaultOutputFormat,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
