package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/encodeous/ripsim/core"
	"github.com/encodeous/ripsim/report"
	"github.com/encodeous/ripsim/state"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage: ripsim run <pairs> [enable]")

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [pairs] [enable]",
	Short: "Run the simulation",
	Long: `Generates a network of 2*pairs routers and runs it until every router has failed.
Passing "enable" turns on random router failure. With --topology the network is read from a file instead.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd, args)
		if err != nil {
			return err
		}
		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}
		logs, err := core.NewLogSink(cmd.ErrOrStderr(), level, cfg.LogPath)
		if err != nil {
			return err
		}
		defer logs.Close()
		log := logs.Logger("ripsim")

		if ok, _ := cmd.Flags().GetBool("debug"); ok {
			core.ServeDebug(log)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runSimulation(ctx, *cfg, cmd.OutOrStdout(), logs)
	},
	GroupID: "sim",
}

// parseRunArgs validates the positional arguments of the run command.
func parseRunArgs(args []string) (pairs int, enable bool, err error) {
	if len(args) == 0 {
		return 0, false, nil
	}
	if len(args) > 2 {
		return 0, false, errUsage
	}
	pairs, err = strconv.Atoi(args[0])
	if err != nil || pairs <= 0 {
		return 0, false, fmt.Errorf("%w: pairs must be a positive integer, got %q", errUsage, args[0])
	}
	if len(args) == 2 {
		if args[1] != "enable" {
			return 0, false, fmt.Errorf("%w: unrecognized argument %q", errUsage, args[1])
		}
		enable = true
	}
	return pairs, enable, nil
}

// loadRunConfig layers the config file, the positional arguments and the explicitly set flags.
func loadRunConfig(cmd *cobra.Command, args []string) (*state.SimCfg, error) {
	pairs, enable, err := parseRunArgs(args)
	if err != nil {
		return nil, err
	}
	cfg, err := state.ReadSimConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	if pairs != 0 {
		cfg.Pairs = pairs
	}
	if enable {
		cfg.FailureEnabled = true
	}

	flags := cmd.Flags()
	if flags.Changed("failure-probability") {
		cfg.FailureProbability, _ = flags.GetFloat64("failure-probability")
	}
	if flags.Changed("tick") {
		cfg.TickDelay, _ = flags.GetDuration("tick")
	}
	if flags.Changed("start-delay") {
		cfg.StartDelay, _ = flags.GetDuration("start-delay")
	}
	if flags.Changed("ticks") {
		cfg.MaxTicks, _ = flags.GetInt("ticks")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("topology") {
		cfg.TopologyPath, _ = flags.GetString("topology")
	}
	if flags.Changed("log") {
		cfg.LogPath, _ = flags.GetString("log")
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	err = state.SimConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildTopology(cfg state.SimCfg) (*state.Topology, error) {
	if cfg.TopologyPath != "" {
		return state.LoadTopology(cfg.TopologyPath)
	}
	return state.GenerateTopology(cfg.Pairs, rand.New(rand.NewPCG(cfg.Seed, 0)))
}

func runSimulation(ctx context.Context, cfg state.SimCfg, out io.Writer, logs *core.LogSink) error {
	log := logs.Logger("ripsim")
	topo, err := buildTopology(cfg)
	if err != nil {
		return err
	}
	report.PrintTopology(out, topo)
	log.Info("starting simulation", "routers", len(topo.Routers), "links", len(topo.Links),
		"seed", cfg.Seed, "failure", cfg.EffectiveFailureProbability(), "start_delay", cfg.StartDelay)

	liveness := report.NewLiveness(time.Duration(state.ExpiryTicks) * cfg.TickDelay)
	sim := core.NewSimulation(cfg, topo, report.Multi{report.NewConsole(out), liveness}, logs)

	statusCtx, stopStatus := context.WithCancel(ctx)
	defer stopStatus()
	go logStatus(statusCtx, log, liveness, len(topo.Routers))

	res, err := sim.Run(ctx)
	stopStatus()
	if errors.Is(err, context.Canceled) {
		log.Info("simulation interrupted")
	} else if err != nil {
		return err
	}
	if res.AllFailed() {
		fmt.Fprintln(out, "\nAll routers have failed. Simulation terminated.")
	} else {
		fmt.Fprintf(out, "\nSimulation stopped with %d of %d routers failed.\n", len(res.Failed), res.Routers)
	}
	return nil
}

func logStatus(ctx context.Context, log *slog.Logger, live *report.Liveness, total int) {
	ticker := time.NewTicker(state.StatusDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			log.Info("status", "live", len(live.Live()), "routers", total)
		case <-ctx.Done():
			return
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().Bool("debug", false, "Serve expvar and metrics on "+state.DebugListen)
	runCmd.Flags().Float64P("failure-probability", "p", state.FailureProbability, "chance per tick that a router fails, when failure is enabled")
	runCmd.Flags().DurationP("tick", "t", state.TickDelay, "delay between ticks")
	runCmd.Flags().Duration("start-delay", state.StartDelay, "delay between printing the topology and starting the routers")
	runCmd.Flags().Int("ticks", 0, "stop every router after this many ticks, 0 runs until all have failed")
	runCmd.Flags().Uint64("seed", 0, "seed for link weights and failures, 0 picks a random seed")
	runCmd.Flags().String("topology", "", "read the topology from this YAML file instead of generating it")
	runCmd.Flags().String("log", "", "also write logs to this file")
}
