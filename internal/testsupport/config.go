package testsupport

import (
	"path/filepath"
	"testing"

	"ballotlink/internal/config"
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
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OverridesPath = filepath.Join(base, "overrides.json")
	cfgVal.Matching.SkipPattern = config.DefaultSkipPattern
	cfgVal.RunStore.Path = filepath.Join(base, "state", "runs.db")

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

// WithoutRunStore disables run history on the test config.
func WithoutRunStore() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.RunStore.Enabled = false
	}
}

// WithSkipChoices adds literal skip choices to the test config.
func WithSkipChoices(choices ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.SkipChoices = append(b.cfg.Matching.SkipChoices, choices...)
	}
}

// WithOverrides writes body to the overrides file of the test config.
func WithOverrides(body string) ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, b.cfg.Paths.OverridesPath, body)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
