package testsupport

import (
	"path/filepath"
	"testing"

	"jamsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sync.Workers = 2
	cfgVal.Matching.CacheTTLSeconds = 60

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithThreshold sets the catalog match threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.Threshold = threshold
	}
}

// WithWorkers sets the worksheet worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Workers = n
	}
}

// WithOutputs points the sync outputs at files inside the test temp directory.
func WithOutputs(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Outputs = b.cfg.Sync.Outputs[:0]
		for _, name := range names {
			b.cfg.Sync.Outputs = append(b.cfg.Sync.Outputs, filepath.Join(b.baseDir, "out", name))
		}
	}
}

// WithMetricsTextfile enables the metrics textfile export.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "metrics", name)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
