package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/wfmon/internal/parse"
)

// monitorFlags holds the flags shared by all engine subcommands.
type monitorFlags struct {
	interval string // bare seconds or a duration string
	notify   bool
	noNotify bool
	plain    bool
	host     string
	pid      int
	process  string
}

func (f *monitorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.interval, "interval", "i", "", "refresh interval in seconds or as a duration (default 10s)")
	cmd.Flags().BoolVarP(&f.notify, "notify", "n", false, "force desktop notifications on")
	cmd.Flags().BoolVar(&f.noNotify, "no-notify", false, "force desktop notifications off")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "one status line per tick instead of the dashboard")
	cmd.Flags().StringVar(&f.host, "host", "", "read the log over SSH from this host")
	cmd.Flags().IntVar(&f.pid, "pid", 0, "engine process pid to sample CPU/memory from")
	cmd.Flags().StringVar(&f.process, "process", "", "engine process name to sample CPU/memory from")
}

var (
	snakemakeFlags monitorFlags
	nextflowFlags  monitorFlags
	cromwellFlags  monitorFlags
	slurmFlags     monitorFlags
)

var snakemakeCmd = &cobra.Command{
	Use:   "snakemake [log-file]",
	Short: "Monitor a Snakemake run via its log file",
	Long: `Monitor a Snakemake run by tailing its log file. With no argument the
log path comes from the engines.snakemake.log config entry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogMonitor(parse.EngineSnakemake, args, &snakemakeFlags)
	},
}

var nextflowCmd = &cobra.Command{
	Use:   "nextflow [log-file]",
	Short: "Monitor a Nextflow run via its .nextflow.log",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogMonitor(parse.EngineNextflow, args, &nextflowFlags)
	},
}

var cromwellCmd = &cobra.Command{
	Use:     "cromwell [log-file]",
	Aliases: []string{"wdl"},
	Short:   "Monitor a WDL workflow via the Cromwell server log",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogMonitor(parse.EngineCromwell, args, &cromwellFlags)
	},
}

var slurmCmd = &cobra.Command{
	Use:   "slurm [user]",
	Short: "Monitor SLURM jobs via the scheduler queue",
	Long: `Monitor SLURM jobs by polling squeue. Jobs leave the queue when they
exit, so a job that disappears without an observed failed state counts as
completed. With no argument the current user's jobs are watched; pass a
user name to watch someone else's queue.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSlurmMonitor(args, &slurmFlags)
	},
}

func init() {
	snakemakeFlags.register(snakemakeCmd)
	nextflowFlags.register(nextflowCmd)
	cromwellFlags.register(cromwellCmd)
	slurmFlags.register(slurmCmd)

	rootCmd.AddCommand(snakemakeCmd, nextflowCmd, cromwellCmd, slurmCmd)
}

// engineUsageHint names the commands for error suggestions.
func engineUsageHint() string {
	return fmt.Sprintf("Usage: wfmon <%s|%s|%s> <log-file>  or  wfmon %s [user]",
		parse.EngineSnakemake, parse.EngineNextflow, parse.EngineCromwell, parse.EngineSlurm)
}
