// Package debug provides handler support for the debugging endpoints.
package debug

import (
	"expvar"
	"net/http"
	"net/http/pprof"

	"github.com/arl/statsviz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mux registers all the debug routes from the standard library into a new
// mux bypassing the use of the DefaultServeMux. Using the DefaultServeMux
// would be a security risk since a dependency could inject a handler into
// our service without us knowing it.
func Mux(build string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	_ = statsviz.Register(mux)

	mux.Handle("/metrics", promhttp.HandlerFor(newRegistry(build), promhttp.HandlerOpts{}))

	return mux
}

// newRegistry returns a registry with the process and runtime collectors and
// a constant build_info gauge.
func newRegistry(build string) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "breachcheck",
		Name:        "build_info",
		Help:        "Build version of the running binary.",
		ConstLabels: prometheus.Labels{"build": build},
	})
	buildInfo.Set(1)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
	)

	return reg
}
