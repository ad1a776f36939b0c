package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .wfmon.yaml configuration file.
type Config struct {
	Version  int                     `yaml:"version" mapstructure:"version"`
	Interval time.Duration           `yaml:"interval" mapstructure:"interval"`
	Notify   bool                    `yaml:"notify" mapstructure:"notify"`
	Engines  map[string]EngineConfig `yaml:"engines" mapstructure:"engines"`
	Slurm    SlurmConfig             `yaml:"slurm" mapstructure:"slurm"`
	Output   OutputConfig            `yaml:"output" mapstructure:"output"`
}

// EngineConfig holds per-engine defaults so 'wfmon snakemake' can run
// without arguments inside a project directory.
type EngineConfig struct {
	// Log is the default log file path for this engine.
	Log string `yaml:"log" mapstructure:"log"`

	// Host is an SSH host to read the log from. Empty means local.
	Host string `yaml:"host" mapstructure:"host"`

	// Process is the engine process name to sample resource usage from.
	Process string `yaml:"process" mapstructure:"process"`
}

// SlurmConfig controls the scheduler query.
type SlurmConfig struct {
	// User filters the queue to one user's jobs. Empty means current user.
	User string `yaml:"user" mapstructure:"user"`

	// Host runs the queue query over SSH. Empty means local.
	Host string `yaml:"host" mapstructure:"host"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`

	// Plain forces line-per-tick output instead of the dashboard.
	Plain bool `yaml:"plain" mapstructure:"plain"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Interval: 10 * time.Second,
		Notify:   true,
		Engines:  make(map[string]EngineConfig),
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
