package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/rover/internal/wire"
)

// AttemptsCmd returns the attempts command
func AttemptsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "List recent manipulation attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := wire.ReportService().RecentAttempts(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Println("No attempts recorded.")
				return nil
			}

			for _, a := range attempts {
				outcome := color.New(color.FgGreen).Sprint("OK  ")
				if !a.Success {
					outcome = color.New(color.FgRed).Sprint("FAIL")
				}
				fmt.Printf("%s  %s  (%.1f, %.1f)", outcome, a.Timestamp, a.X, a.Y)
				if len(a.Strategies) > 0 {
					fmt.Printf("  retries: %s", strings.Join(a.Strategies, " → "))
				}
				if a.Reason != "" {
					fmt.Printf("  [%s]", a.Reason)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of attempts to show")
	return cmd
}
