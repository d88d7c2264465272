/*
Package observability turns the storefront lifecycle hooks into Prometheus
metrics and structured log lines.

Metrics are registered on a private registry exposed through Handler, so
several instances can coexist in tests.
*/
package observability
