// Package observability builds the process logger and the Prometheus metrics
// recorded by the HTTP layer, the sign-in flow and the authorization decision point.
package observability
