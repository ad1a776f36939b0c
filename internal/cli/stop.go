package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/state"
	"github.com/rileyhilliard/wfmon/internal/ui"
)

var stopCmd = &cobra.Command{
	Use:   "stop <engine>",
	Short: "Stop a running monitor",
	Long: `Stop the monitor for an engine by signalling the process recorded in
its state file. The workflow itself keeps running; only the monitor
stops.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStop(args[0])
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(engine string) error {
	dir := state.Dir()
	st, err := state.Read(dir, engine)
	if err != nil {
		return err
	}

	if !st.Alive() {
		// The monitor crashed without cleaning up; remove the leftovers.
		if err := state.Delete(dir, engine); err != nil {
			return err
		}
		return errors.New(errors.ErrState,
			fmt.Sprintf("Monitor for %s (pid %d) is not running", engine, st.PID),
			"Removed its stale state file.")
	}

	if err := st.Stop(); err != nil {
		return err
	}

	fmt.Printf("%s stopped %s monitor (pid %d)\n", ui.SymbolSuccess, engine, st.PID)
	return nil
}
