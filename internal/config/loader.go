package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".wfmon.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/wfmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'wfmon init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .wfmon.yaml in current directory
// 3. .wfmon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/wfmon/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// Walk up to parent directories. A workflow usually runs from a
	// subdirectory of the project that carries the config.
	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if
// not found. Environment overrides apply either way.
func LoadOrDefault() (*Config, error) {
	path, err := Find("")
	if err != nil {
		return nil, err
	}

	if path == "" {
		cfg := DefaultConfig()
		applyEnv(cfg)
		return cfg, nil
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults
// merged in and environment overrides applied last.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetDefault("interval", "10s")
	v.SetDefault("notify", true)
	v.SetDefault("output.color", "auto")

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv layers environment overrides on top of file config.
// UPDATE_INTERVAL and ENABLE_NOTIFICATIONS are the historical names and
// take precedence over the file.
func applyEnv(cfg *Config) {
	if raw := os.Getenv("UPDATE_INTERVAL"); raw != "" {
		if d, ok := ParseInterval(raw); ok {
			cfg.Interval = d
		}
	}
	if raw := os.Getenv("ENABLE_NOTIFICATIONS"); raw != "" {
		if b, ok := parseBool(raw); ok {
			cfg.Notify = b
		}
	}
}

// ParseInterval accepts a bare number of seconds ("30") or a duration
// string ("30s", "2m"). Also used by the --interval flag.
func ParseInterval(raw string) (time.Duration, bool) {
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
