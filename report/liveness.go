package report

import (
	"slices"
	"time"

	"github.com/encodeous/ripsim/state"
	"github.com/jellydator/ttlcache/v3"
)

// Liveness tracks which routers have reported within the last ttl.
type Liveness struct {
	cache *ttlcache.Cache[state.NodeId, int]
}

func NewLiveness(ttl time.Duration) *Liveness {
	return &Liveness{
		cache: ttlcache.New[state.NodeId, int](
			ttlcache.WithTTL[state.NodeId, int](ttl),
			ttlcache.WithDisableTouchOnHit[state.NodeId, int](),
		),
	}
}

func (l *Liveness) ReportTable(snap state.TableSnapshot) {
	l.cache.Set(snap.Node, snap.Tick, ttlcache.DefaultTTL)
}

func (l *Liveness) ReportFailure(node state.NodeId, _ int) {
	l.cache.Delete(node)
}

// Live returns the routers that reported recently, sorted.
func (l *Liveness) Live() []state.NodeId {
	l.cache.DeleteExpired()
	live := l.cache.Keys()
	slices.Sort(live)
	return live
}

// LastTick returns the last tick node reported, if it is still live.
func (l *Liveness) LastTick(node state.NodeId) (int, bool) {
	item := l.cache.Get(node)
	if item == nil || item.IsExpired() {
		return 0, false
	}
	return item.Value(), true
}
