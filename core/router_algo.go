package core

import (
	"github.com/encodeous/ripsim/state"
)

type RouterEvent int

// trace events

const (
	RouteImproved RouterEvent = iota
	RouteExpired
	RouterFailed
)

// warn events

const (
	DeliveryDropped RouterEvent = iota + 1000
)

func (e RouterEvent) String() string {
	switch e {
	case RouteImproved:
		return "ROUTE_IMPROVED"
	case RouteExpired:
		return "ROUTE_EXPIRED"
	case RouterFailed:
		return "ROUTER_FAILED"
	case DeliveryDropped:
		return "DELIVERY_DROPPED"
	}
	return "UNKNOWN"
}

// Router is the sink for events raised while updating a routing table
type Router interface {
	Log(event RouterEvent, desc string, args ...any)
}

/*
Relax merges the table advertised by neigh into t.

For every destination both tables know about, a strictly smaller advertised
metric is a candidate. The candidate costs the advertised metric plus our
metric to neigh; if we currently believe neigh is unreachable, the hop costs
nothing, since the advertisement arrived over the link anyway. The entry is
replaced only when the candidate beats the current metric, so relaxing never
makes a route worse.

Any contact from neigh refreshes the age of our entry for neigh.
Relax returns the destinations whose route improved.
*/
func Relax(t *state.RoutingTable, r Router, neigh state.NodeId, adv []state.Route) []state.NodeId {
	improved := make([]state.NodeId, 0)
	for _, a := range adv {
		if a.Dest == t.Id {
			continue
		}
		cur := t.Get(a.Dest)
		if cur == nil {
			continue
		}
		if a.Metric >= cur.Metric {
			continue
		}

		candidate := a.Metric
		if linkCost, ok := t.Metric(neigh); ok && linkCost != state.INF {
			candidate = AddMetric(a.Metric, linkCost)
		}
		if candidate >= cur.Metric {
			continue
		}

		old := *cur
		cur.Metric = candidate
		cur.NextHop = neigh
		cur.Age = 0
		if n := t.Get(neigh); n != nil {
			n.Age = 0
		}
		improved = append(improved, a.Dest)
		r.Log(RouteImproved, "route improved", "dest", a.Dest, "old", old, "new", *cur)
	}

	if n := t.Get(neigh); n != nil {
		n.Age = 0
	}
	return improved
}

// AgeAndExpire ages the entry for dest by one tick. Once it has gone
// state.ExpiryTicks ticks without a refresh the route is invalidated; the age
// keeps counting. Returns true if this call made the route unreachable.
func AgeAndExpire(t *state.RoutingTable, r Router, dest state.NodeId) bool {
	route := t.Get(dest)
	if route == nil {
		return false
	}
	route.Age++
	if route.Age < state.ExpiryTicks {
		return false
	}
	reachable := route.Metric != state.INF
	route.Metric = state.INF
	route.NextHop = state.NoHop
	if reachable {
		r.Log(RouteExpired, "stale route dropped", "dest", dest, "age", route.Age)
	}
	return reachable
}
