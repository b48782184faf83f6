package fake

import (
	"sync"

	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
)

// Simulator is a minimal stateful pod model: a Responder that advances
// Progress/BasalState/BolusState the way a real pod would in reply to
// each opcode, including gradual purge/prime/bolus delivery across
// repeated status polls. Used to drive internal/manager's end-to-end
// tests without a real radio link.
type Simulator struct {
	mu     sync.Mutex
	status pod.Status

	resyncRemaining int
	resyncSeedHint  uint16

	// stepUnits is how much insulin a single status poll delivers during
	// purge, priming, or an immediate bolus; small enough that tests see
	// several poll iterations rather than the wait completing in one step.
	stepUnits float64
}

// NewSimulator returns a Simulator starting at InitialState.
func NewSimulator() *Simulator {
	return &Simulator{
		status:    pod.Status{Progress: pod.InitialState},
		stepUnits: 0.05,
	}
}

// TriggerNonceResync makes the next Respond call report a nonce-resync
// request instead of advancing protocol state.
func (s *Simulator) TriggerNonceResync(seedHint uint16) {
	s.TriggerNonceResyncCount(seedHint, 1)
}

// TriggerNonceResyncCount makes the next count Respond calls (default 1 if
// count <= 0) report a nonce-resync request, so a test can force the resync
// retry itself to fail by queuing more than one.
func (s *Simulator) TriggerNonceResyncCount(seedHint uint16, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count <= 0 {
		count = 1
	}
	s.resyncRemaining = count
	s.resyncSeedHint = seedHint
}

// Status returns a copy of the simulator's current status.
func (s *Simulator) Status() pod.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Respond implements Responder.
func (s *Simulator) Respond(req message.Request, podRecord *pod.Record) (pod.Status, map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resyncRemaining > 0 {
		s.resyncRemaining--
		return s.status, map[string]interface{}{"__nonce_resync": s.resyncSeedHint}, nil
	}

	switch req.Opcode {
	case message.OpAssignAddress:
		s.status.Progress = pod.TankFillCompleted
	case message.OpSetupPod:
		s.status.Progress = pod.PairingSuccess
	case message.OpAlertSetup, message.OpDeliveryFlags, message.OpStatus:
		// no state transition of their own; status below reflects
		// whatever the pod is already doing.
	case message.OpPrimeCannula:
		s.status.Progress = pod.Purging
		s.status.NotDeliveredInsulin = 0.15
	case message.OpInsertCannula:
		s.status.Progress = pod.Priming
		s.status.NotDeliveredInsulin = 0.15
	case message.OpBasalSchedule:
		s.status.Progress = pod.BasalScheduleSet
		if p, ok := req.Params.(message.BasalScheduleParams); ok {
			_ = p
		}
	case message.OpAcknowledgeAlerts:
		if p, ok := req.Params.(message.AcknowledgeAlertsParams); ok {
			s.status.AlertMask &^= p.AlertMask
		}
	case message.OpTempBasal:
		s.status.BasalState = pod.BasalTemporary
	case message.OpCancelTempBasal:
		s.status.BasalState = pod.BasalScheduled
	case message.OpBolus:
		if p, ok := req.Params.(message.BolusParams); ok {
			s.status.BolusState = pod.BolusImmediate
			s.status.NotDeliveredInsulin = p.AmountUnits
		}
	case message.OpCancelBolus:
		s.status.BolusState = pod.BolusInactive
		s.status.NotDeliveredInsulin = 0
	case message.OpDeactivate:
		s.status.Progress = pod.Inactive
	}

	s.stepDelivery()

	return s.status, nil, nil
}

// stepDelivery advances one poll's worth of purge/priming/bolus delivery
// and flips Progress/BolusState once the step finishes the dose.
func (s *Simulator) stepDelivery() {
	switch s.status.Progress {
	case pod.Purging:
		s.deliverStep()
		if s.status.NotDeliveredInsulin <= 0 {
			s.status.Progress = pod.ReadyForInjection
		}
	case pod.Priming:
		s.deliverStep()
		if s.status.NotDeliveredInsulin <= 0 {
			s.status.Progress = pod.Running
		}
	}
	if s.status.BolusState == pod.BolusImmediate {
		s.deliverStep()
		if s.status.NotDeliveredInsulin <= 0 {
			s.status.BolusState = pod.BolusInactive
		}
	}
}

func (s *Simulator) deliverStep() {
	if s.status.NotDeliveredInsulin <= 0 {
		s.status.NotDeliveredInsulin = 0
		return
	}
	step := s.stepUnits
	if step > s.status.NotDeliveredInsulin {
		step = s.status.NotDeliveredInsulin
	}
	s.status.NotDeliveredInsulin -= step
	s.status.DeliveredInsulin += step
}
