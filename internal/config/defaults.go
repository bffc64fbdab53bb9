package config

const (
	defaultOutputDir     = "ballotlink-out"
	defaultLogDir        = "~/.local/share/ballotlink/logs"
	defaultRunStorePath  = "~/.local/share/ballotlink/runs.db"
	defaultOverridesPath = "~/.config/ballotlink/overrides.json"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	// DefaultSkipPattern matches ballot choices that carry no identity.
	DefaultSkipPattern = "yes|no|write-?in"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:        defaultLogDir,
			OverridesPath: defaultOverridesPath,
		},
		Matching: Matching{
			WarnOnTies: true,
		},
		RunStore: RunStore{
			Enabled: true,
			Path:    defaultRunStorePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
