package state

import (
	"context"
	"log/slog"
	"sync"
)

// State access must be done only on the router's own Goroutine
type State struct {
	*Env
	Table *RoutingTable
	Tick  int
	// Failed is set once and never cleared.
	Failed bool
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	SimCfg
	Id       NodeId
	Topology *Topology
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Log      *slog.Logger

	tasks sync.WaitGroup
}
