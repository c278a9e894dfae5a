package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/encodeous/ripsim/report"
	"github.com/encodeous/ripsim/state"
	"github.com/spf13/cobra"
)

var topologyCmd = &cobra.Command{
	Use:   "topology <pairs>",
	Short: "Generates a topology file that can be passed to run --topology",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := strconv.Atoi(args[0])
		if err != nil || pairs <= 0 {
			return fmt.Errorf("pairs must be a positive integer, got %q", args[0])
		}
		seed, _ := cmd.Flags().GetUint64("seed")
		if seed == 0 {
			seed = rand.Uint64()
		}
		topo, err := state.GenerateTopology(pairs, rand.New(rand.NewPCG(seed, 0)))
		if err != nil {
			return err
		}
		out, err := state.MarshalTopology(topo)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		err = os.WriteFile(path, out, 0600)
		if err != nil {
			return err
		}
		report.PrintTopology(cmd.OutOrStdout(), topo)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote topology to %s\n", path)
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(topologyCmd)
	topologyCmd.Flags().StringP("output", "o", "", "write the topology to this file instead of stdout")
	topologyCmd.Flags().Uint64("seed", 0, "seed for link weights, 0 picks a random seed")
}
