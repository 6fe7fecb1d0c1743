package config

const (
	defaultConfigPath    = "~/.config/stereo2spatial/config.toml"
	defaultHistoryPath   = "~/.local/share/stereo2spatial/history.db"
	defaultFOVHorizontal = 55.0
	defaultBaseline      = 65.0
	defaultSuffix        = "_spatial"
	defaultQuality       = 95
	defaultLogLevel      = "warn"
	defaultLogFormat     = "text"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Camera: Camera{
			FOVHorizontal: defaultFOVHorizontal,
			Baseline:      defaultBaseline,
		},
		Output: Output{
			Suffix: defaultSuffix,
		},
		Encoder: Encoder{
			Quality: defaultQuality,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		History: History{
			Enabled: false,
			Path:    defaultHistoryPath,
		},
		Batch: Batch{
			Jobs: 1,
		},
	}
}
