package state

import (
	"fmt"
	"math/rand/v2"
	"net/netip"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
)

type RouterCfg struct {
	Id NodeId `yaml:"id"`
}

type LinkCfg struct {
	From   NodeId `yaml:"from"`
	To     NodeId `yaml:"to"`
	Weight uint32 `yaml:"weight"`
}

// TopologyCfg is the on-disk form of a Topology
type TopologyCfg struct {
	Routers []RouterCfg `yaml:"routers"`
	Links   []LinkCfg   `yaml:"links"`
}

// Topology is built once before any router starts and is never mutated afterwards, so it can be shared freely.
type Topology struct {
	Routers []RouterCfg
	Links   []Link

	neighbours map[NodeId][]Link
}

func NewTopology(cfg TopologyCfg) (*Topology, error) {
	if err := TopologyValidator(&cfg); err != nil {
		return nil, err
	}
	t := &Topology{
		Routers:    slices.Clone(cfg.Routers),
		Links:      make([]Link, 0, len(cfg.Links)),
		neighbours: make(map[NodeId][]Link),
	}
	for _, l := range cfg.Links {
		link := NewLink(l.From, l.To, l.Weight)
		t.Links = append(t.Links, link)
		t.neighbours[link.V1] = append(t.neighbours[link.V1], link)
		t.neighbours[link.V2] = append(t.neighbours[link.V2], link)
	}
	return t, nil
}

// Neighbours returns the links incident to id.
func (t *Topology) Neighbours(id NodeId) []Link {
	return t.neighbours[id]
}

func (t *Topology) Ids() []NodeId {
	ids := make([]NodeId, 0, len(t.Routers))
	for _, r := range t.Routers {
		ids = append(ids, r.Id)
	}
	return ids
}

func (t *Topology) HasRouter(id NodeId) bool {
	return slices.ContainsFunc(t.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == id
	})
}

func (t *Topology) Cfg() TopologyCfg {
	cfg := TopologyCfg{Routers: slices.Clone(t.Routers)}
	for _, l := range t.Links {
		cfg.Links = append(cfg.Links, LinkCfg{From: l.V1, To: l.V2, Weight: l.Weight})
	}
	return cfg
}

// RouterAddress returns the address of the i-th generated router, counting from 1.
// Every router gets its own /24.
func RouterAddress(i int) NodeId {
	return NodeId(netip.AddrFrom4([4]byte{10, byte(i >> 8), byte(i), 1}).String())
}

/*
GenerateTopology builds 2*pairs routers. Routers in the same pair are linked,
neighbouring pairs are chained, and with two or more pairs the chain is closed
into a ring so there is more than one path between most routers:

	(1 - 2) - (3 - 4) - ... - (2n-1 - 2n)
	 \_______________________________/

Link weights are drawn from [1, MaxLinkWeight].
*/
func GenerateTopology(pairs int, rng *rand.Rand) (*Topology, error) {
	if pairs <= 0 {
		return nil, fmt.Errorf("pair count must be positive, got %d", pairs)
	}
	n := pairs * 2
	if n > 0xffff {
		return nil, fmt.Errorf("pair count %d is too large", pairs)
	}
	cfg := TopologyCfg{}
	for i := 1; i <= n; i++ {
		cfg.Routers = append(cfg.Routers, RouterCfg{Id: RouterAddress(i)})
	}
	weight := func() uint32 {
		return 1 + rng.Uint32N(MaxLinkWeight)
	}
	for i := 1; i < n; i++ {
		cfg.Links = append(cfg.Links, LinkCfg{From: RouterAddress(i), To: RouterAddress(i + 1), Weight: weight()})
	}
	if pairs >= 2 {
		cfg.Links = append(cfg.Links, LinkCfg{From: RouterAddress(n), To: RouterAddress(1), Weight: weight()})
	}
	return NewTopology(cfg)
}

func LoadTopology(path string) (*Topology, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg TopologyCfg
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse topology %s: %w", path, err)
	}
	return NewTopology(cfg)
}

func MarshalTopology(t *Topology) ([]byte, error) {
	return yaml.Marshal(t.Cfg())
}
