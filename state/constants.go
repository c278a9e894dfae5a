package state

import "time"

const (
	// INF is the unreachable metric. It is the largest representable metric, so
	// additions must go through AddMetric.
	INF = ^(uint32)(0)

	// NoHop is the next hop of a destination with no known route.
	NoHop NodeId = "0.0.0.0"

	// SubnetMask is shared by every router in the simulation.
	SubnetMask = "255.255.255.0"
)

var (
	// ExpiryTicks is the number of consecutive unrefreshed sends after which a
	// route is invalidated.
	ExpiryTicks = 5

	TickDelay          = time.Second
	StartDelay         = time.Second * 5
	FailureProbability = 0.4
	MaxLinkWeight      = (uint32)(10)

	DispatchBuffer = 128

	StatusDelay   = time.Second * 10
	DebugListen   = "127.0.0.1:6060"
	DefaultConfig = "ripsim.yaml"
)
