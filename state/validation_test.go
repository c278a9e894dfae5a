package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddrValidator_Valid(t *testing.T) {
	assert.NoError(t, AddrValidator("10.0.1.1"))
	assert.NoError(t, AddrValidator("192.168.0.254"))
}

func TestAddrValidator_Invalid(t *testing.T) {
	assert.Error(t, AddrValidator(""))
	assert.Error(t, AddrValidator("router-a"))
	assert.Error(t, AddrValidator("10.0.1"))
	assert.Error(t, AddrValidator("::1"))
}

func lineCfg() TopologyCfg {
	return TopologyCfg{
		Routers: []RouterCfg{{"10.0.1.1"}, {"10.0.2.1"}, {"10.0.3.1"}},
		Links: []LinkCfg{
			{From: "10.0.1.1", To: "10.0.2.1", Weight: 1},
			{From: "10.0.2.1", To: "10.0.3.1", Weight: 1},
		},
	}
}

func TestTopologyValidator_Valid(t *testing.T) {
	cfg := lineCfg()
	assert.NoError(t, TopologyValidator(&cfg))
}

func TestTopologyValidator_Errors(t *testing.T) {
	cfg := TopologyCfg{}
	assert.ErrorContains(t, TopologyValidator(&cfg), "topology has no routers")

	cfg = lineCfg()
	cfg.Routers = append(cfg.Routers, RouterCfg{"10.0.1.1"})
	assert.ErrorContains(t, TopologyValidator(&cfg), "duplicate router: 10.0.1.1")

	cfg = lineCfg()
	cfg.Links = append(cfg.Links, LinkCfg{From: "10.0.3.1", To: "10.0.9.1", Weight: 1})
	assert.ErrorContains(t, TopologyValidator(&cfg), "router 10.0.9.1 not defined")

	cfg = lineCfg()
	cfg.Links = append(cfg.Links, LinkCfg{From: "10.0.3.1", To: "10.0.3.1", Weight: 1})
	assert.ErrorContains(t, TopologyValidator(&cfg), "must not link to itself")

	cfg = lineCfg()
	cfg.Links = append(cfg.Links, LinkCfg{From: "10.0.2.1", To: "10.0.1.1", Weight: 3})
	assert.ErrorContains(t, TopologyValidator(&cfg), "duplicate link found: 10.0.1.1, 10.0.2.1")

	cfg = lineCfg()
	cfg.Links[0].Weight = 0
	assert.ErrorContains(t, TopologyValidator(&cfg), "invalid weight 0")

	cfg = lineCfg()
	cfg.Routers[0].Id = "a"
	assert.ErrorContains(t, TopologyValidator(&cfg), "invalid router address")
}

func TestSimConfigValidator(t *testing.T) {
	cfg := DefaultSimCfg()
	cfg.Pairs = 3
	assert.NoError(t, SimConfigValidator(&cfg))

	bad := cfg
	bad.Pairs = 0
	assert.ErrorContains(t, SimConfigValidator(&bad), "either a pair count or a topology file is required")

	bad = cfg
	bad.Pairs = 0
	bad.TopologyPath = "topology.yaml"
	assert.NoError(t, SimConfigValidator(&bad))

	bad = cfg
	bad.FailureProbability = 1.5
	assert.Error(t, SimConfigValidator(&bad))

	bad = cfg
	bad.TickDelay = 0
	assert.Error(t, SimConfigValidator(&bad))

	bad = cfg
	bad.StartDelay = -time.Second
	assert.Error(t, SimConfigValidator(&bad))

	bad = cfg
	bad.MaxTicks = -1
	assert.Error(t, SimConfigValidator(&bad))

	bad = cfg
	bad.LogPath = "/does/not/exist/ripsim.log"
	assert.ErrorContains(t, SimConfigValidator(&bad), "invalid log path")
}
