package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency       = metric.NewHistogram("1m1s")
	PacketsForwarded      = metric.NewCounter("10s1s")
	PacketsRejected       = metric.NewCounter("10s1s")
	RouteUpdatesSent      = metric.NewCounter("1m1s")
	RouteUpdatesReceived  = metric.NewCounter("1m1s")
	RouteControlsSent     = metric.NewCounter("1m1s")
	RoutingTableMutations = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("strand:PacketsForwarded/s", PacketsForwarded)
	expvar.Publish("strand:PacketsRejected/s", PacketsRejected)

	expvar.Publish("strand:RouteUpdatesSent", RouteUpdatesSent)
	expvar.Publish("strand:RouteUpdatesReceived", RouteUpdatesReceived)
	expvar.Publish("strand:RouteControlsSent", RouteControlsSent)
	expvar.Publish("strand:RoutingTableMutations", RoutingTableMutations)
	expvar.Publish("strand:DispatchLatency (µs)", DispatchLatency)
}
