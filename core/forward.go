package core

import (
	"net/netip"

	"github.com/encodeous/ripsim/state"
	"github.com/gaissmai/bart"
)

// ForwardTable resolves addresses to next hops by longest prefix match over
// every reachable destination subnet. The router's own subnet resolves to itself.
type ForwardTable struct {
	table *bart.Table[state.NodeId]
}

func NewForwardTable(t *state.RoutingTable) *ForwardTable {
	f := &ForwardTable{}
	f.Rebuild(t)
	return f
}

// Rebuild replaces the table contents with the reachable routes of t.
func (f *ForwardTable) Rebuild(t *state.RoutingTable) {
	table := new(bart.Table[state.NodeId])
	if self, err := state.DestPrefix(t.Id); err == nil {
		table.Insert(self, t.Id)
	}
	for _, route := range t.Advertise() {
		if route.Metric == state.INF {
			continue
		}
		prefix, err := state.DestPrefix(route.Dest)
		if err != nil {
			continue
		}
		table.Insert(prefix, route.NextHop)
	}
	f.table = table
}

// Lookup returns the next hop towards addr.
func (f *ForwardTable) Lookup(addr netip.Addr) (state.NodeId, bool) {
	return f.table.Lookup(addr)
}
