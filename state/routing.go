package state

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

type NodeId string

// Link is an undirected weighted connection between two routers.
type Link struct {
	Pair[NodeId, NodeId]
	Weight uint32
}

func NewLink(a, b NodeId, weight uint32) Link {
	return Link{MakeSortedPair(a, b), weight}
}

func (l Link) Has(id NodeId) bool {
	return l.V1 == id || l.V2 == id
}

// Other returns the end of the link that is not id.
func (l Link) Other(id NodeId) NodeId {
	if l.V1 == id {
		return l.V2
	}
	return l.V1
}

func (l Link) String() string {
	return fmt.Sprintf("%s <-%d-> %s", l.V1, l.Weight, l.V2)
}

type Route struct {
	Dest    NodeId
	NextHop NodeId
	Metric  uint32
	Age     int
}

func (r Route) String() string {
	return fmt.Sprintf("%s via %s (metric: %s, age: %d)", r.Dest, r.NextHop, MetricString(r.Metric), r.Age)
}

func MetricString(metric uint32) string {
	if metric == INF {
		return "infinity"
	}
	return strconv.FormatUint(uint64(metric), 10)
}

// RoutingTable maps every other router to a route, in insertion order.
// It is owned by a single router and must only be touched from that router's goroutine.
type RoutingTable struct {
	Id     NodeId
	routes []Route
	index  map[NodeId]int
}

// NewRoutingTable seeds a table for self: direct neighbours start with the link weight, everyone else is unreachable.
func NewRoutingTable(self NodeId, topo *Topology) *RoutingTable {
	t := &RoutingTable{
		Id:    self,
		index: make(map[NodeId]int),
	}
	neighbours := make(map[NodeId]uint32)
	for _, link := range topo.Neighbours(self) {
		neighbours[link.Other(self)] = link.Weight
	}
	for _, router := range topo.Routers {
		if router.Id == self {
			continue
		}
		route := Route{
			Dest:    router.Id,
			NextHop: NoHop,
			Metric:  INF,
		}
		if w, ok := neighbours[router.Id]; ok {
			route.NextHop = router.Id
			route.Metric = w
		}
		t.index[router.Id] = len(t.routes)
		t.routes = append(t.routes, route)
	}
	return t
}

// Get returns a pointer to the live entry for dest, or nil.
func (t *RoutingTable) Get(dest NodeId) *Route {
	idx, ok := t.index[dest]
	if !ok {
		return nil
	}
	return &t.routes[idx]
}

func (t *RoutingTable) NextHop(dest NodeId) (NodeId, bool) {
	if r := t.Get(dest); r != nil {
		return r.NextHop, true
	}
	return "", false
}

func (t *RoutingTable) Metric(dest NodeId) (uint32, bool) {
	if r := t.Get(dest); r != nil {
		return r.Metric, true
	}
	return 0, false
}

func (t *RoutingTable) Age(dest NodeId) (int, bool) {
	if r := t.Get(dest); r != nil {
		return r.Age, true
	}
	return 0, false
}

func (t *RoutingTable) Len() int {
	return len(t.routes)
}

// Advertise copies the table so it can be handed to a neighbour.
func (t *RoutingTable) Advertise() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

type RouteReport struct {
	Dest    NodeId
	Mask    string
	NextHop NodeId
	Metric  uint32
	Age     int
}

type TableSnapshot struct {
	Tick    int
	Node    NodeId
	Entries []RouteReport
}

func (t *RoutingTable) Snapshot(tick int) TableSnapshot {
	snap := TableSnapshot{
		Tick:    tick,
		Node:    t.Id,
		Entries: make([]RouteReport, 0, len(t.routes)),
	}
	for _, r := range t.routes {
		snap.Entries = append(snap.Entries, RouteReport{
			Dest:    r.Dest,
			Mask:    SubnetMask,
			NextHop: r.NextHop,
			Metric:  r.Metric,
			Age:     r.Age,
		})
	}
	return snap
}

func (t *RoutingTable) String() string {
	out := ""
	for i, r := range t.routes {
		if i != 0 {
			out += "\n"
		}
		out += r.String()
	}
	return out
}

// MaskBits is the prefix length of SubnetMask.
func MaskBits() int {
	ones, _ := net.IPMask(net.ParseIP(SubnetMask).To4()).Size()
	return ones
}

// DestPrefix is the subnet owned by router id.
func DestPrefix(id NodeId) (netip.Prefix, error) {
	addr, err := netip.ParseAddr(string(id))
	if err != nil {
		return netip.Prefix{}, err
	}
	return addr.Prefix(MaskBits())
}
