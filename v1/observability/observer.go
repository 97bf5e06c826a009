package observability

import "time"

// Observer receives one event per completed client operation. Implementations
// must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a completed operation.
type OperationContext struct {
	// Component is the client that performed the operation, e.g. "grpc" or "http"
	Component string

	// Operation is the operation name, e.g. "query" or "delete_all"
	Operation string

	// Resource is the namespace the operation targeted; empty for the default namespace
	Resource string

	// SubResource carries extra context such as the HTTP path or gRPC method
	SubResource string

	// Duration is the wall time of the operation, including encoding
	Duration time.Duration

	// Error is the error returned to the caller, nil on success
	Error error

	// Size is the number of vectors written, fetched, matched or listed
	Size int64

	// Metadata holds operation specific details
	Metadata map[string]interface{}
}

// Observers fans each event out to every non-nil observer in order.
type Observers []Observer

// ObserveOperation implements Observer.
func (o Observers) ObserveOperation(ctx OperationContext) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveOperation(ctx)
		}
	}
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(OperationContext)

// ObserveOperation implements Observer.
func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }

// InFlightTracker is implemented by observers that also count requests still
// waiting for a response. The returned function ends the request.
type InFlightTracker interface {
	TrackInFlight(component string) func()
}

// TrackInFlight starts an in-flight request on o if it is an InFlightTracker.
// The returned function must be called once the request finishes.
func TrackInFlight(o Observer, component string) func() {
	if t, ok := o.(InFlightTracker); ok {
		return t.TrackInFlight(component)
	}
	return func() {}
}

// TrackInFlight implements InFlightTracker.
func (o Observers) TrackInFlight(component string) func() {
	var done []func()
	for _, obs := range o {
		if obs != nil {
			done = append(done, TrackInFlight(obs, component))
		}
	}
	return func() {
		for _, d := range done {
			d()
		}
	}
}
