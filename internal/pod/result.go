package pod

import "time"

// Result is the outcome of one request/response exchange with a pod.
// It is persisted exactly once, on exchange termination, by
// internal/manager's perform_exchange via the Repository port.
type Result struct {
	ID          string
	RequestTime time.Time
	ResultTime  time.Time
	Success     bool
	Exception   error

	// BasalSchedule carries the 48-slot U/h vector when the exchange was a
	// basal-schedule-setting request (InjectAndStart or SetBasalSchedule);
	// nil for every other exchange.
	BasalSchedule []float64

	// ResponseFields holds opaque response-derived data a MessageExchange
	// implementation chooses to surface (vendor-specific, not interpreted
	// by the manager).
	ResponseFields map[string]interface{}
}
