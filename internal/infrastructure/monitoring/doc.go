/*
Package monitoring provides Prometheus metrics for the terp host.

# Metrics

  - terp_sandbox_prepare_total{result}: compiled, cached or error
  - terp_bridge_init_total{mode,outcome}: suspended, completed or failed
  - terp_bridge_init_duration_seconds{mode}
  - terp_bridge_load_total{status}
  - terp_bridges_ready

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	b := bridge.New(factory, bridge.WithMetrics(metrics))

A nil *Metrics is accepted everywhere and records nothing, so components can
be built without metrics in tests.

# Metrics Endpoint

	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
*/
package monitoring
