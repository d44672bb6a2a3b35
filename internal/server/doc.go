// Package server provides the small HTTP surface the CLI exposes while a command runs: routing with middleware and a
// Prometheus metrics endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [Logging] and [Recover] are the two
// middlewares installed by the CLI.
//
// The [BasicRouter] implementation registers method-qualified [http.ServeMux] patterns.
//
// # Metrics
//
// [MetricsHandler] exposes the request counters recorded by the transport layer at /metrics. `--metrics-addr`
// starts a [Listener] serving it for the lifetime of the command.
package server
