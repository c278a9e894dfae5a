// Package report contains the sinks that routers publish their tables to.
package report

import "github.com/encodeous/ripsim/state"

// Reporter receives table snapshots and failure notices from every router.
// Implementations must be safe for concurrent use.
type Reporter interface {
	ReportTable(snap state.TableSnapshot)
	ReportFailure(node state.NodeId, tick int)
}

// Multi fans every report out to each of its reporters in order.
type Multi []Reporter

func (m Multi) ReportTable(snap state.TableSnapshot) {
	for _, r := range m {
		r.ReportTable(snap)
	}
}

func (m Multi) ReportFailure(node state.NodeId, tick int) {
	for _, r := range m {
		r.ReportFailure(node, tick)
	}
}

// Discard drops every report.
type Discard struct{}

func (Discard) ReportTable(state.TableSnapshot) {}
func (Discard) ReportFailure(state.NodeId, int) {}
