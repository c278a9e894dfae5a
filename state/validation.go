package state

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path"
	"path/filepath"
	"slices"
)

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

// AddrValidator checks that s is a dotted-quad router address.
func AddrValidator(s string) error {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if !addr.Is4() {
		return fmt.Errorf("%s is not an IPv4 address", s)
	}
	return nil
}

func SimConfigValidator(cfg *SimCfg) error {
	if cfg.Pairs < 0 {
		return fmt.Errorf("pair count must not be negative, got %d", cfg.Pairs)
	}
	if cfg.Pairs == 0 && cfg.TopologyPath == "" {
		return errors.New("either a pair count or a topology file is required")
	}
	if cfg.FailureProbability < 0 || cfg.FailureProbability > 1 {
		return fmt.Errorf("failure probability %v is not within [0, 1]", cfg.FailureProbability)
	}
	if cfg.TickDelay <= 0 {
		return fmt.Errorf("tick delay must be positive, got %s", cfg.TickDelay)
	}
	if cfg.StartDelay < 0 {
		return fmt.Errorf("start delay must not be negative, got %s", cfg.StartDelay)
	}
	if cfg.MaxTicks < 0 {
		return fmt.Errorf("max ticks must not be negative, got %d", cfg.MaxTicks)
	}
	if cfg.LogPath != "" {
		if err := PathValidator(cfg.LogPath); err != nil {
			return fmt.Errorf("invalid log path: %w", err)
		}
	}
	return nil
}

func TopologyValidator(cfg *TopologyCfg) error {
	if len(cfg.Routers) == 0 {
		return errors.New("topology has no routers")
	}
	ids := make([]NodeId, 0, len(cfg.Routers))
	for _, r := range cfg.Routers {
		if err := AddrValidator(string(r.Id)); err != nil {
			return fmt.Errorf("invalid router address: %w", err)
		}
		if slices.Contains(ids, r.Id) {
			return fmt.Errorf("duplicate router: %s", r.Id)
		}
		ids = append(ids, r.Id)
	}
	seen := make([]Pair[NodeId, NodeId], 0, len(cfg.Links))
	for _, l := range cfg.Links {
		if !slices.Contains(ids, l.From) {
			return fmt.Errorf("router %s not defined", l.From)
		}
		if !slices.Contains(ids, l.To) {
			return fmt.Errorf("router %s not defined", l.To)
		}
		if l.From == l.To {
			return fmt.Errorf("router %s must not link to itself", l.From)
		}
		if l.Weight == 0 || l.Weight == INF {
			return fmt.Errorf("link %s, %s has invalid weight %d", l.From, l.To, l.Weight)
		}
		edge := MakeSortedPair(l.From, l.To)
		if slices.Contains(seen, edge) {
			return fmt.Errorf("duplicate link found: %s, %s", edge.V1, edge.V2)
		}
		seen = append(seen, edge)
	}
	return nil
}
