// Package podfault defines the Pod Manager's error kinds.
//
// Every error the manager can report is one of a small closed set of kinds
// (spec §7). A *Fault wraps the kind with a human message, mirroring the
// teacher's adapter.VendorError{Code, Original} pattern: Unwrap() returns
// the sentinel kind so callers can still use errors.Is against it.
package podfault

import "fmt"

// Kinds per spec §7. All carry a human message via *Fault.
var (
	ErrInvalidParameter         = fmt.Errorf("INVALID_PARAMETER")
	ErrPodStateInvalidForCommand = fmt.Errorf("POD_STATE_INVALID_FOR_COMMAND")
	ErrPodResponseUnexpected    = fmt.Errorf("POD_RESPONSE_UNEXPECTED")
	ErrRadioRecvTimeout         = fmt.Errorf("RADIO_RECV_TIMEOUT")
	ErrRadioSendTimeout         = fmt.Errorf("RADIO_SEND_TIMEOUT")
	ErrRadioGeneric             = fmt.Errorf("RADIO_GENERIC")
	ErrInternal                 = fmt.Errorf("INTERNAL_ERROR")
	ErrNotImplemented           = fmt.Errorf("NOT_IMPLEMENTED")
)

// Fault wraps a sentinel kind with a message specific to the failure site.
type Fault struct {
	Kind    error
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Kind
}

func newFault(kind error, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidParameter reports a validation failure over a therapy parameter.
func InvalidParameter(format string, args ...interface{}) *Fault {
	return newFault(ErrInvalidParameter, format, args...)
}

// PodStateInvalidForCommand reports a precondition failure against the
// pod's current progress/basal/bolus state.
func PodStateInvalidForCommand(format string, args ...interface{}) *Fault {
	return newFault(ErrPodStateInvalidForCommand, format, args...)
}

// PodResponseUnexpected reports a parsed response that does not satisfy a
// post-condition the operation required.
func PodResponseUnexpected(format string, args ...interface{}) *Fault {
	return newFault(ErrPodResponseUnexpected, format, args...)
}

// RadioRecvTimeout reports a response that never arrived.
func RadioRecvTimeout(format string, args ...interface{}) *Fault {
	return newFault(ErrRadioRecvTimeout, format, args...)
}

// RadioSendTimeout reports a request that could not be transmitted in time.
func RadioSendTimeout(format string, args ...interface{}) *Fault {
	return newFault(ErrRadioSendTimeout, format, args...)
}

// RadioGeneric reports a radio-layer failure not covered by a more
// specific kind.
func RadioGeneric(format string, args ...interface{}) *Fault {
	return newFault(ErrRadioGeneric, format, args...)
}

// Internal reports a defect in the manager itself rather than the pod or
// the radio link.
func Internal(format string, args ...interface{}) *Fault {
	return newFault(ErrInternal, format, args...)
}

// NotImplemented reports a reserved operation slot (ConfigureAlerts,
// StartExtendedBolus, CancelExtendedBolus, SuspendBasal).
func NotImplemented(format string, args ...interface{}) *Fault {
	return newFault(ErrNotImplemented, format, args...)
}
