package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency     = metric.NewHistogram("1m1s")
	TicksPerSecond      = metric.NewCounter("10s1s")
	DeliveriesPerSecond = metric.NewCounter("10s1s")
	DroppedDeliveries   = metric.NewCounter("1m1s")
	RoutesImproved      = metric.NewCounter("1m1s")
	RoutesExpired       = metric.NewCounter("1m1s")
	RouterFailures      = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("ripsim:Ticks/s", TicksPerSecond)
	expvar.Publish("ripsim:Deliveries/s", DeliveriesPerSecond)
	expvar.Publish("ripsim:DroppedDeliveries", DroppedDeliveries)
	expvar.Publish("ripsim:RoutesImproved", RoutesImproved)
	expvar.Publish("ripsim:RoutesExpired", RoutesExpired)
	expvar.Publish("ripsim:RouterFailures", RouterFailures)
	expvar.Publish("ripsim:DispatchLatency (µs)", DispatchLatency)
}
