package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rover/internal/cli"
	"github.com/example/rover/internal/version"
	"github.com/example/rover/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "rover",
		Short:   "Autonomous patrol and pickup rover",
		Version: version.String(),
		Long: `rover drives an autonomous ground vehicle that patrols a bounded
area, detects pickup targets, scoops them up and carries them to a
disposal zone. Stall detection listens to the motors and a retry
ladder recovers from jams; scoop timings improve across sessions.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetConfigPath(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to rover.yaml (defaults apply when omitted)")

	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.CalibrateCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.AttemptsCmd())
	rootCmd.AddCommand(cli.HotspotsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
