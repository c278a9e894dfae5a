package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/netip"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/encodeous/ripsim/perf"
	"github.com/encodeous/ripsim/report"
	"github.com/encodeous/ripsim/state"
)

var (
	ErrRouterFailed = errors.New("router failed")
	ErrTickLimit    = errors.New("tick limit reached")
	ErrNotStarted   = errors.New("router has not started")
)

// LinkFilter decides whether a table sent from one router to another is lost on the way. Return true to drop it.
type LinkFilter func(from, to state.NodeId) bool

func (f LinkFilter) TryApply(from, to state.NodeId) bool {
	if f == nil {
		return false
	}
	return f(from, to)
}

// RipRouter is one simulated router. Its routing table lives on the goroutine
// started by Run; everything that touches the table is dispatched there.
type RipRouter struct {
	Id       state.NodeId
	Links    []state.Link
	Reporter report.Reporter

	topo   *state.Topology
	rng    *rand.Rand
	peers  map[state.NodeId]*RipRouter
	filter LinkFilter
	log    *slog.Logger
	env    atomic.Pointer[state.Env]

	// owned by the router goroutine
	forward *ForwardTable
	state   *state.State
}

func NewRipRouter(id state.NodeId, topo *state.Topology, reporter report.Reporter, rng *rand.Rand) *RipRouter {
	return &RipRouter{
		Id:       id,
		Links:    topo.Neighbours(id),
		Reporter: reporter,
		topo:     topo,
		rng:      rng,
		peers:    make(map[state.NodeId]*RipRouter),
		log:      slog.New(slog.DiscardHandler),
	}
}

// Connect makes the routers on the other end of r's links reachable. It must be called before Run.
func (r *RipRouter) Connect(routers map[state.NodeId]*RipRouter) {
	for _, link := range r.Links {
		neigh := link.Other(r.Id)
		if peer, ok := routers[neigh]; ok {
			r.peers[neigh] = peer
		}
	}
}

func (r *RipRouter) Log(event RouterEvent, desc string, args ...any) {
	if event >= DeliveryDropped {
		r.log.Warn(fmt.Sprintf("%s %s", event.String(), desc), args...)
		return
	}
	r.log.Debug(fmt.Sprintf("%s %s", event.String(), desc), args...)
}

// Run seeds the routing table and runs the router until it fails, reaches the
// tick limit or ctx ends. Only an error raised inside the router is returned.
func (r *RipRouter) Run(ctx context.Context, cfg state.SimCfg, log *slog.Logger) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(context.Canceled)

	if log != nil {
		r.log = log
	}
	dispatch := make(chan func(*state.State) error, state.DispatchBuffer)
	s := &state.State{
		Env: &state.Env{
			DispatchChannel: dispatch,
			SimCfg:          cfg,
			Id:              r.Id,
			Topology:        r.topo,
			Context:         ctx,
			Cancel:          cancel,
			Log:             r.log,
		},
		Table: state.NewRoutingTable(r.Id, r.topo),
	}
	r.state = s
	r.forward = NewForwardTable(s.Table)
	r.env.Store(s.Env)

	s.Log.Debug("router started", "neighbours", len(r.Links))
	s.RepeatTask(r.tick, cfg.TickDelay)
	err := r.mainLoop(s, dispatch)
	s.WaitTasks()
	return err
}

func (r *RipRouter) mainLoop(s *state.State, dispatch <-chan func(*state.State) error) error {
	var loopErr error
	for {
		select {
		case fun := <-dispatch:
			if s.Context.Err() != nil {
				goto endLoop
			}
			start := time.Now()
			err := runDispatch(s, fun)
			if err != nil {
				s.Log.Error("error occurred during dispatch: ", "error", err)
				loopErr = err
				s.Cancel(err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > time.Millisecond*50 {
				s.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(dispatch))
			}
		case <-s.Context.Done():
			goto endLoop
		}
	}
endLoop:
	s.Log.Debug("stopped main loop", "reason", context.Cause(s.Context).Error(), "tick", s.Tick)
	return loopErr
}

func runDispatch(s *state.State, fun func(*state.State) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fun(s)
}

// tick reports the table, pushes it to every neighbour, ages the neighbours'
// entries and then rolls for failure.
func (r *RipRouter) tick(s *state.State) error {
	if s.Failed {
		return nil
	}
	if s.MaxTicks > 0 && s.Tick >= s.MaxTicks {
		s.Cancel(ErrTickLimit)
		return nil
	}

	r.Reporter.ReportTable(s.Table.Snapshot(s.Tick))

	expired := false
	for _, link := range r.Links {
		neigh := link.Other(r.Id)
		r.sendTo(neigh, s.Table.Advertise())
		if AgeAndExpire(s.Table, r, neigh) {
			perf.RoutesExpired.Add(1)
			expired = true
		}
	}
	if expired {
		r.forward.Rebuild(s.Table)
	}
	perf.TicksPerSecond.Add(1)

	if ShouldFail(r.rng, s.EffectiveFailureProbability()) {
		s.Failed = true
		perf.RouterFailures.Add(1)
		r.Log(RouterFailed, "router failed", "tick", s.Tick)
		r.Reporter.ReportFailure(r.Id, s.Tick)
		s.Cancel(ErrRouterFailed)
		return nil
	}
	s.Tick++
	return nil
}

func (r *RipRouter) sendTo(neigh state.NodeId, adv []state.Route) {
	peer, ok := r.peers[neigh]
	if !ok {
		return
	}
	if r.filter.TryApply(r.Id, neigh) {
		return
	}
	if peer.Deliver(r.Id, adv) {
		perf.DeliveriesPerSecond.Add(1)
	}
}

// Deliver hands a neighbour's advertised table to r. Before r has started,
// after it has stopped, or while its queue is full the table is dropped; the
// neighbour will advertise again next tick.
func (r *RipRouter) Deliver(from state.NodeId, adv []state.Route) bool {
	env := r.env.Load()
	if env == nil {
		return false
	}
	if env.Context.Err() != nil {
		return false
	}
	if !env.TryDispatch(func(s *state.State) error {
		r.receive(s, from, adv)
		return nil
	}) {
		perf.DroppedDeliveries.Add(1)
		r.Log(DeliveryDropped, "dispatch queue full, dropped table", "from", from)
		return false
	}
	return true
}

func (r *RipRouter) receive(s *state.State, from state.NodeId, adv []state.Route) {
	if s.Table == nil {
		return
	}
	improved := Relax(s.Table, r, from, adv)
	if len(improved) > 0 {
		perf.RoutesImproved.Add(float64(len(improved)))
		r.forward.Rebuild(s.Table)
	}
}

// Snapshot returns the current table of a running router.
func (r *RipRouter) Snapshot() (state.TableSnapshot, error) {
	env := r.env.Load()
	if env == nil {
		return state.TableSnapshot{}, ErrNotStarted
	}
	res, err := env.DispatchWait(func(s *state.State) (any, error) {
		return s.Table.Snapshot(s.Tick), nil
	})
	if err != nil {
		return state.TableSnapshot{}, err
	}
	return res.(state.TableSnapshot), nil
}

// Lookup resolves the next hop a running router would forward addr to.
func (r *RipRouter) Lookup(addr netip.Addr) (state.NodeId, bool, error) {
	env := r.env.Load()
	if env == nil {
		return "", false, ErrNotStarted
	}
	res, err := env.DispatchWait(func(s *state.State) (any, error) {
		nh, ok := r.forward.Lookup(addr)
		return state.Pair[state.NodeId, bool]{V1: nh, V2: ok}, nil
	})
	if err != nil {
		return "", false, err
	}
	p := res.(state.Pair[state.NodeId, bool])
	return p.V1, p.V2, nil
}

// State returns the router state. It is only safe to read once Run has returned.
func (r *RipRouter) State() *state.State {
	return r.state
}

// Forward returns the forwarding table. It is only safe to read once Run has returned.
func (r *RipRouter) Forward() *ForwardTable {
	return r.forward
}
