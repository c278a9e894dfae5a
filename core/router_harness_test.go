package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/ripsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type HarnessEvent struct {
	Event   RouterEvent
	Message string
	Args    []any
}

// RouterHarness records the events raised while relaxing or aging a table.
type RouterHarness struct {
	events []HarnessEvent
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	h.events = append(h.events, HarnessEvent{Event: event, Message: desc, Args: args})
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, e := range h {
		cur := e.Event.String() + " " + e.Message
		for _, arg := range e.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

// GetEvents drains the recorded events.
func (h *RouterHarness) GetEvents() HarnessEvents {
	x := h.events
	h.events = make([]HarnessEvent, 0)
	return x
}

// contains matches events by type and a leading "key", value sequence of their args.
func (h HarnessEvents) contains(event RouterEvent, args ...any) bool {
	for _, e := range h {
		if e.Event != event || len(e.Args) < len(args) {
			continue
		}
		match := true
		for i, arg := range args {
			if !cmp.Equal(e.Args[i], arg) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (h HarnessEvents) AssertContains(t *testing.T, event RouterEvent, args ...any) {
	t.Helper()
	if h.contains(event, args...) {
		return
	}
	t.Fatal("Expected event not found: ", event, " with args: ", args, " in ", h)
}

func (h HarnessEvents) AssertNotContains(t *testing.T, event RouterEvent, args ...any) {
	t.Helper()
	if h.contains(event, args...) {
		t.Fatal("Unexpected event found: ", event, " with args: ", args, " in ", h)
	}
}

// MakeTopology builds a topology from "a-b:w" style link descriptions; every endpoint becomes a router.
func MakeTopology(t *testing.T, links ...string) *state.Topology {
	t.Helper()
	cfg := state.TopologyCfg{}
	seen := make(map[state.NodeId]bool)
	addRouter := func(id state.NodeId) {
		if !seen[id] {
			seen[id] = true
			cfg.Routers = append(cfg.Routers, state.RouterCfg{Id: id})
		}
	}
	for _, l := range links {
		var from, to string
		var w uint32
		ends, weight, ok := strings.Cut(l, ":")
		require.True(t, ok, "bad link %s", l)
		from, to, ok = strings.Cut(ends, "-")
		require.True(t, ok, "bad link %s", l)
		_, err := fmt.Sscan(weight, &w)
		require.NoError(t, err)
		addRouter(addr(from))
		addRouter(addr(to))
		cfg.Links = append(cfg.Links, state.LinkCfg{From: addr(from), To: addr(to), Weight: w})
	}
	topo, err := state.NewTopology(cfg)
	require.NoError(t, err)
	return topo
}

// addr maps a single letter router name to its address, A -> 10.0.1.1.
func addr(name string) state.NodeId {
	return state.RouterAddress(int(name[0]-'A') + 1)
}

func Adv(routes ...state.Route) []state.Route {
	return routes
}

func R(dest string, metric uint32) state.Route {
	nh := state.NoHop
	if metric != state.INF {
		nh = addr(dest)
	}
	return state.Route{Dest: addr(dest), NextHop: nh, Metric: metric}
}
