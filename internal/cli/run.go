// Package cli contains the cobra commands for the rover binary.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/rover/internal/ports/primary"
	"github.com/example/rover/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var (
		pattern  string
		maxTicks int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a patrol mission",
		Long: `Run a full patrol mission: patrol the configured area, approach
detected targets, pick them up and carry them to the disposal zone.

The mission ends when the coverage threshold is reached, the patrol
time budget expires, or the process receives SIGINT/SIGTERM. Ctrl-C
stops all motors before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := wire.MissionService().RunMission(ctx, primary.MissionOptions{
				Pattern:  pattern,
				MaxTicks: maxTicks,
			})
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println("Mission finished")
			fmt.Printf("  Session:  %d\n", summary.SessionID)
			fmt.Printf("  Ended in: %s (%s)\n", stateColor(summary.FinalState), summary.Reason)
			fmt.Printf("  Coverage: %.1f%%\n", summary.CoveragePercent)
			fmt.Printf("  Attempts: %d (%d succeeded)\n", summary.Attempts, summary.Successes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "patrol pattern (lawnmower|spiral|grid), overrides config")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "hard stop after this many control ticks (0 = unlimited)")
	return cmd
}

func stateColor(state string) string {
	switch state {
	case "fault":
		return color.New(color.FgRed).Sprint(state)
	case "idle":
		return color.New(color.FgGreen).Sprint(state)
	default:
		return color.New(color.FgYellow).Sprint(state)
	}
}
