package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/wfmon/internal/config"
	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/parse"
	"github.com/rileyhilliard/wfmon/pkg/sshutil"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .wfmon.yaml config file interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config without asking")
	rootCmd.AddCommand(initCmd)
}

func runInit(force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	var (
		engine   string
		logPath  string
		host     string
		interval string
		doNotify = true
	)

	engineOptions := make([]huh.Option[string], 0, len(parse.Engines()))
	for _, e := range parse.Engines() {
		engineOptions = append(engineOptions, huh.NewOption(string(e), string(e)))
	}

	hostOptions := []huh.Option[string]{huh.NewOption("local (no SSH)", "")}
	if known, err := sshutil.KnownHosts(); err == nil {
		for _, h := range known {
			label := h.Alias
			if desc := h.Description(); desc != h.Alias {
				label = fmt.Sprintf("%s (%s)", h.Alias, desc)
			}
			hostOptions = append(hostOptions, huh.NewOption(label, h.Alias))
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Workflow engine").
				Options(engineOptions...).
				Value(&engine),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Log file path").
				Description("Leave empty for slurm or to rely on engine defaults").
				Placeholder(".nextflow.log").
				Value(&logPath),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where does the workflow run?").
				Description("Pick an SSH host to read the log remotely").
				Options(hostOptions...).
				Value(&host),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh interval").
				Description("Seconds between polls").
				Placeholder("10").
				Value(&interval).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, ok := config.ParseInterval(s); !ok {
						return fmt.Errorf("use a number of seconds or a duration like 30s")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Desktop notifications for failures and completion?").
				Value(&doNotify),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input", "")
	}

	cfg := config.DefaultConfig()
	cfg.Notify = doNotify
	if interval != "" {
		if d, ok := config.ParseInterval(interval); ok {
			cfg.Interval = d
		}
	}
	if engine != "" && (logPath != "" || host != "") {
		cfg.Engines[engine] = config.EngineConfig{Log: logPath, Host: host}
	}
	if engine == string(parse.EngineSlurm) && host != "" {
		cfg.Slurm.Host = host
	}

	if err := writeConfigFile(configPath, cfg); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Printf("Start monitoring with: wfmon %s\n", engine)
	return nil
}

// configFile mirrors Config with YAML-friendly field types: the interval
// is written as a duration string, not nanoseconds.
type configFile struct {
	Version  int                            `yaml:"version"`
	Interval string                         `yaml:"interval"`
	Notify   bool                           `yaml:"notify"`
	Engines  map[string]config.EngineConfig `yaml:"engines,omitempty"`
	Slurm    *config.SlurmConfig            `yaml:"slurm,omitempty"`
	Output   *config.OutputConfig           `yaml:"output,omitempty"`
}

// writeConfigFile marshals the config to YAML with a short header comment.
func writeConfigFile(path string, cfg *config.Config) error {
	out := configFile{
		Version:  cfg.Version,
		Interval: cfg.Interval.String(),
		Notify:   cfg.Notify,
	}
	if len(cfg.Engines) > 0 {
		out.Engines = cfg.Engines
	}
	if cfg.Slurm != (config.SlurmConfig{}) {
		out.Slurm = &cfg.Slurm
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize config", "")
	}

	content := "# wfmon configuration\n# Docs: wfmon --help\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path,
			"Check directory permissions")
	}
	return nil
}
