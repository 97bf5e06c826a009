// Package observability defines the hook the index clients report every
// completed operation to.
//
// *metrics.Metrics implements Observer; applications can add their own and
// combine them with Observers:
//
//	client.WithObserver(observability.Observers{m, auditLog})
//
// An observer that also implements InFlightTracker is told when each request
// starts, so it can keep a gauge of requests waiting for a response.
package observability
