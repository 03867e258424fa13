package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rover/internal/wire"
)

// HotspotsCmd returns the hotspots command
func HotspotsCmd() *cobra.Command {
	var minCount int

	cmd := &cobra.Command{
		Use:   "hotspots",
		Short: "List grid cells where targets keep appearing",
		Long: `List coverage cells ranked by how often targets were detected in
them. Frequent cells are good candidates for tighter patrol passes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hotspots, err := wire.ReportService().Hotspots(context.Background(), minCount)
			if err != nil {
				return err
			}
			if len(hotspots) == 0 {
				fmt.Println("No hotspots recorded.")
				return nil
			}

			cfg := wire.Config()
			cellSize := cfg.Patrol.GridCellSize
			fmt.Printf("%-12s %-10s %s\n", "CELL", "COUNT", "LAST SEEN")
			for _, h := range hotspots {
				x := cfg.Area.X + (float64(h.Col)+0.5)*cellSize
				y := cfg.Area.Y + (float64(h.Row)+0.5)*cellSize
				fmt.Printf("(%.1f, %.1f)   %-10d %s\n", x, y, h.Count, h.LastSeen)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&minCount, "min", "m", 1, "minimum detection count")
	return cmd
}
