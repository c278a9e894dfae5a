package cmd

import (
	"os"

	"github.com/encodeous/ripsim/state"
	"github.com/spf13/cobra"
)

var configPath = state.DefaultConfig

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ripsim",
	Short: "RIP distance-vector routing simulator",
	Long: `ripsim runs a network of simulated routers, each on its own goroutine.
Routers exchange their routing tables with direct neighbours every tick, converge on
shortest paths using the Bellman-Ford relaxation, and may randomly fail.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "simulation config file, ignored if missing")
}
