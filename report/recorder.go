package report

import (
	"sync"

	"github.com/encodeous/ripsim/state"
)

// Recorder keeps every report in memory.
type Recorder struct {
	mu       sync.Mutex
	tables   []state.TableSnapshot
	failures map[state.NodeId]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		failures: make(map[state.NodeId]int),
	}
}

func (r *Recorder) ReportTable(snap state.TableSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables = append(r.tables, snap)
}

func (r *Recorder) ReportFailure(node state.NodeId, tick int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[node] = tick
}

// Tables returns the snapshots reported by node, oldest first.
func (r *Recorder) Tables(node state.NodeId) []state.TableSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]state.TableSnapshot, 0)
	for _, snap := range r.tables {
		if snap.Node == node {
			out = append(out, snap)
		}
	}
	return out
}

func (r *Recorder) Last(node state.NodeId) (state.TableSnapshot, bool) {
	tables := r.Tables(node)
	if len(tables) == 0 {
		return state.TableSnapshot{}, false
	}
	return tables[len(tables)-1], true
}

// Failure returns the tick node failed on.
func (r *Recorder) Failure(node state.NodeId) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tick, ok := r.failures[node]
	return tick, ok
}

func (r *Recorder) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}
