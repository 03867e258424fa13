package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/rover/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest session, calibration and learned timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.ReportService().Status(context.Background())
			if err != nil {
				return err
			}

			fmt.Println("Rover Status")
			fmt.Println()

			if report.Session == nil {
				fmt.Println("Session: (none recorded)")
			} else {
				s := report.Session
				fmt.Printf("Session %d [%s]\n", s.ID, s.Pattern)
				fmt.Printf("  Started:  %s\n", s.StartedAt)
				if s.EndedAt != "" {
					fmt.Printf("  Ended:    %s\n", s.EndedAt)
				} else {
					fmt.Printf("  Ended:    %s\n", color.New(color.FgYellow).Sprint("(still open)"))
				}
				fmt.Printf("  Coverage: %.1f%%\n", s.CoveragePercent)
				fmt.Printf("  Attempts: %d (%d succeeded)\n", s.Attempts, s.Successes)
			}
			fmt.Println()

			fmt.Printf("Overall success rate: %.0f%%\n", report.SuccessRate*100)
			fmt.Println()

			if len(report.Baselines) == 0 {
				fmt.Println(color.New(color.FgRed).Sprint("Not calibrated") + " - run `rover calibrate`")
			} else {
				fmt.Println("Audio baselines:")
				for _, b := range report.Baselines {
					fmt.Printf("  %-14s %.1f Hz (calibrated %s)\n", b.Channel, b.DominantFreq, b.CalibratedAt)
				}
			}
			fmt.Println()

			if len(report.Parameters) > 0 {
				fmt.Println("Learned timings:")
				for _, p := range report.Parameters {
					fmt.Printf("  %-14s %.2fs (%d samples)\n", p.Name, p.Value, p.Samples)
				}
			}
			return nil
		},
	}
}
