package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/encodeous/ripsim/report"
	"github.com/encodeous/ripsim/state"
	"golang.org/x/sync/errgroup"
)

// Simulation owns every router of a topology and runs them side by side.
type Simulation struct {
	Cfg      state.SimCfg
	Topology *state.Topology
	Routers  map[state.NodeId]*RipRouter
	Reporter report.Reporter
	logs     *LogSink
}

type Result struct {
	Routers int
	Failed  []state.NodeId
}

// AllFailed is true when every router stopped because it failed.
func (r Result) AllFailed() bool {
	return r.Routers > 0 && len(r.Failed) == r.Routers
}

func NewSimulation(cfg state.SimCfg, topo *state.Topology, reporter report.Reporter, logs *LogSink) *Simulation {
	if reporter == nil {
		reporter = report.Discard{}
	}
	sim := &Simulation{
		Cfg:      cfg,
		Topology: topo,
		Routers:  make(map[state.NodeId]*RipRouter, len(topo.Routers)),
		Reporter: reporter,
		logs:     logs,
	}
	for i, id := range topo.Ids() {
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)+1))
		sim.Routers[id] = NewRipRouter(id, topo, reporter, rng)
	}
	for _, r := range sim.Routers {
		r.Connect(sim.Routers)
	}
	return sim
}

// SetFilter installs f on every router. It must be called before Run.
func (sim *Simulation) SetFilter(f LinkFilter) {
	for _, r := range sim.Routers {
		r.filter = f
	}
}

// Run waits out the start delay and runs all routers until each one has
// failed, reached the tick limit or ctx is done.
func (sim *Simulation) Run(ctx context.Context) (Result, error) {
	res := Result{Routers: len(sim.Routers)}
	if sim.Cfg.StartDelay > 0 {
		timer := time.NewTimer(sim.Cfg.StartDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return res, context.Cause(ctx)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range sim.Topology.Ids() {
		r := sim.Routers[id]
		g.Go(func() error {
			err := r.Run(gctx, sim.Cfg, sim.logs.Logger(string(id)))
			if err != nil {
				return fmt.Errorf("router %s: %w", id, err)
			}
			if s := r.State(); s != nil && s.Failed {
				mu.Lock()
				res.Failed = append(res.Failed, id)
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()
	slices.Sort(res.Failed)
	if err != nil {
		return res, err
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, ErrTickLimit) {
		return res, cause
	}
	return res, nil
}
