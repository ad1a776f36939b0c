package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/wfmon/internal/state"
	"github.com/rileyhilliard/wfmon/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running monitors and their last known progress",
	Long: `Show every monitor that has a state file: which engine it watches,
whether the monitor process is still alive, and the progress it last
recorded. Stale entries from crashed monitors are flagged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus() error {
	states, err := state.List(state.Dir())
	if err != nil {
		return err
	}

	if len(states) == 0 {
		fmt.Println("No monitors running.")
		return nil
	}

	liveStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	staleStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	for _, st := range states {
		marker := liveStyle.Render(ui.SymbolSuccess)
		liveness := fmt.Sprintf("pid %d", st.PID)
		if !st.Alive() {
			marker = staleStyle.Render(ui.SymbolFail)
			liveness = fmt.Sprintf("pid %d (stale)", st.PID)
		}

		fmt.Printf("%s %-10s %s\n", marker, st.Engine, st.Source)
		fmt.Printf("  %s | %d/%d (%d%%)", liveness, st.Completed, st.Total, st.Percent)
		if st.Failed > 0 {
			fmt.Printf(" | failed %d", st.Failed)
		}
		if !st.LastUpdate.IsZero() {
			fmt.Printf(" | updated %s ago", time.Since(st.LastUpdate).Truncate(time.Second))
		}
		fmt.Println()
	}

	return nil
}
