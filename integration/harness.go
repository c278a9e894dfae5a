//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/encodeous/ripsim/core"
	"github.com/encodeous/ripsim/report"
	"github.com/encodeous/ripsim/state"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
func (s Signal) Wait() {
	<-s
}

// Watcher calls Check with every table reported, from the reporting router's goroutine.
type Watcher struct {
	Check func(snap state.TableSnapshot)
}

func (w Watcher) ReportTable(snap state.TableSnapshot) {
	if w.Check != nil {
		w.Check(snap)
	}
}

func (w Watcher) ReportFailure(state.NodeId, int) {}

type VirtualHarness struct {
	Cfg      state.SimCfg
	Topology *state.Topology
	Sim      *core.Simulation
	Recorder *report.Recorder
	Watchers []Watcher
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Result   core.Result

	mu  sync.Mutex
	cut map[state.Pair[state.NodeId, state.NodeId]]bool
}

func NewHarness(topo *state.Topology, cfg state.SimCfg) *VirtualHarness {
	return &VirtualHarness{
		Cfg:      cfg,
		Topology: topo,
		Recorder: report.NewRecorder(),
		cut:      make(map[state.Pair[state.NodeId, state.NodeId]]bool),
	}
}

// CutLink drops every table sent from one router to the other, in that direction only.
func (v *VirtualHarness) CutLink(from, to state.NodeId) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cut[state.Pair[state.NodeId, state.NodeId]{V1: from, V2: to}] = true
}

func (v *VirtualHarness) RestoreLink(from, to state.NodeId) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.cut, state.Pair[state.NodeId, state.NodeId]{V1: from, V2: to})
}

func (v *VirtualHarness) dropped(from, to state.NodeId) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cut[state.Pair[state.NodeId, state.NodeId]{V1: from, V2: to}]
}

// Start runs the simulation in the background and waits until every router accepts queries.
// The returned channel receives the simulation's result once it stops.
func (v *VirtualHarness) Start() chan error {
	ctx, cancel := context.WithCancelCause(context.Background())
	v.Context = ctx
	v.Cancel = cancel

	reporters := report.Multi{v.Recorder}
	for _, w := range v.Watchers {
		reporters = append(reporters, w)
	}
	v.Sim = core.NewSimulation(v.Cfg, v.Topology, reporters, nil)
	v.Sim.SetFilter(v.dropped)

	errChan := make(chan error, 1)
	stopped := NewSignal()
	go func() {
		res, err := v.Sim.Run(ctx)
		v.mu.Lock()
		v.Result = res
		v.mu.Unlock()
		errChan <- err
		stopped.Trigger()
	}()

	// wait for all routers to start
	for {
		started := true
		for _, r := range v.Sim.Routers {
			if _, err := r.Snapshot(); err != nil {
				started = false
				break
			}
		}
		if started {
			break
		}
		select {
		case <-ctx.Done():
			return errChan
		case <-stopped:
			return errChan
		case <-time.After(time.Millisecond * 10):
		}
	}
	return errChan
}

func (v *VirtualHarness) Stop() {
	v.Cancel(fmt.Errorf("stopping harness"))
}

// Metric asks a running router for its current metric to dest.
func (v *VirtualHarness) Metric(node, dest state.NodeId) (uint32, error) {
	snap, err := v.Sim.Routers[node].Snapshot()
	if err != nil {
		return 0, err
	}
	for _, e := range snap.Entries {
		if e.Dest == dest {
			return e.Metric, nil
		}
	}
	return 0, fmt.Errorf("%s has no route to %s", node, dest)
}

// ShortestPaths computes the expected converged metrics of every router with Floyd-Warshall.
func ShortestPaths(topo *state.Topology) map[state.NodeId]map[state.NodeId]uint32 {
	ids := topo.Ids()
	dist := make(map[state.NodeId]map[state.NodeId]uint32, len(ids))
	for _, a := range ids {
		dist[a] = make(map[state.NodeId]uint32, len(ids))
		for _, b := range ids {
			if a != b {
				dist[a][b] = state.INF
			}
		}
	}
	for _, l := range topo.Links {
		dist[l.V1][l.V2] = min(dist[l.V1][l.V2], l.Weight)
		dist[l.V2][l.V1] = min(dist[l.V2][l.V1], l.Weight)
	}
	for _, k := range ids {
		for _, i := range ids {
			for _, j := range ids {
				if i == j || i == k || j == k {
					continue
				}
				d := core.AddMetric(dist[i][k], dist[k][j])
				if d < dist[i][j] {
					dist[i][j] = d
				}
			}
		}
	}
	return dist
}

// Metrics collects the metrics of a table snapshot by destination.
func Metrics(snap state.TableSnapshot) map[state.NodeId]uint32 {
	out := make(map[state.NodeId]uint32, len(snap.Entries))
	for _, e := range snap.Entries {
		out[e.Dest] = e.Metric
	}
	return out
}
