package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/rover/internal/wire"
)

// CalibrateCmd returns the calibrate command
func CalibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Record audio baselines for all motor channels",
		Long: `Sample every configured motor channel under no-load conditions and
store the healthy frequency baseline per channel. Stall detection
compares live audio against these baselines, so calibration must run
before the first mission and after any mechanical change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, err := wire.CalibrationService().Calibrate(ctx)
			if err != nil {
				return err
			}

			fmt.Println("Calibration complete")
			for _, r := range results {
				fmt.Printf("  %s %-14s %.1f Hz (%d samples)\n",
					color.New(color.FgGreen).Sprint("✓"), r.Channel, r.DominantFreq, r.Samples)
			}
			return nil
		},
	}
}
