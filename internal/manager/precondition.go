package manager

import (
	"math"

	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// assertBasalScheduleValid enforces spec.md §4.1.5: exactly 48 entries,
// each a multiple of 0.05 U/h in [0.05, 30.0].
func assertBasalScheduleValid(schedule []float64) error {
	if len(schedule) != 48 {
		return podfault.InvalidParameter("basal schedule must have exactly 48 entries, got %d", len(schedule))
	}
	for i, v := range schedule {
		if v < 0.05 || v > 30.0 {
			return podfault.InvalidParameter("basal schedule entry %d (%.2f) outside [0.05, 30.0]", i, v)
		}
		steps := v / 0.05
		if math.Abs(steps-math.Round(steps)) > 1e-6 {
			return podfault.InvalidParameter("basal schedule entry %d (%.2f) is not a multiple of 0.05", i, v)
		}
	}
	return nil
}

// assertBolusAmountValid enforces the same discretization over a single
// immediate-bolus amount.
func assertBolusAmountValid(amount float64) error {
	if amount < 0.05 || amount > 30.0 {
		return podfault.InvalidParameter("bolus amount %.2f outside [0.05, 30.0]", amount)
	}
	steps := amount / 0.05
	if math.Abs(steps-math.Round(steps)) > 1e-6 {
		return podfault.InvalidParameter("bolus amount %.2f is not a multiple of 0.05", amount)
	}
	return nil
}

func (m *Manager) assertImmediateBolusInactive() error {
	status := m.pod.LastStatus
	if status != nil && status.BolusState == pod.BolusImmediate {
		return podfault.PodStateInvalidForCommand("an immediate bolus is already in progress")
	}
	return nil
}

func (m *Manager) assertImmediateBolusActive() error {
	status := m.pod.LastStatus
	if status == nil || status.BolusState != pod.BolusImmediate {
		return podfault.PodStateInvalidForCommand("no immediate bolus is in progress")
	}
	return nil
}

func (m *Manager) assertNotPaired() error {
	status := m.pod.LastStatus
	if status != nil && status.Progress >= pod.PairingSuccess {
		return podfault.PodStateInvalidForCommand("pod is already paired")
	}
	return nil
}

func (m *Manager) assertPaired() error {
	status := m.pod.LastStatus
	if status == nil || status.Progress < pod.PairingSuccess {
		return podfault.PodStateInvalidForCommand("pod is not paired")
	}
	return nil
}

func (m *Manager) assertRunningStatus() error {
	status := m.pod.LastStatus
	if status == nil || status.Progress < pod.Running || status.Progress > pod.RunningLow {
		return podfault.PodStateInvalidForCommand("pod is not in a running state")
	}
	return nil
}
