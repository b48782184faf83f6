package manager

import (
	"context"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// SetTempBasal cancels any currently running temp basal, then installs
// rate/hours as a new one, recording the exchange result as the pod's
// last temp basal result.
func (m *Manager) SetTempBasal(ctx context.Context, conv *conversation.Conversation, rateUnitsPerHour, durationHours float64) {
	m.runOp(conv, "SetTempBasal", func() error {
		if err := m.refreshAndAssertRunningNotBolusing(ctx, conv); err != nil {
			return err
		}
		if err := m.cancelTempBasalIfActive(ctx, conv); err != nil {
			return err
		}

		req := message.NewBuilder().TempBasal(rateUnitsPerHour, durationHours).Build()
		progress, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil)
		if !ok {
			return progress.Exception
		}

		status := m.pod.LastStatus
		if status == nil || status.BasalState != pod.BasalTemporary {
			return podfault.PodResponseUnexpected("basal state not Temporary after temp_basal")
		}
		m.pod.LastTempBasalResult = progress.Result
		return nil
	})
}

// CancelTempBasal cancels a running temp basal, if any, and clears the
// pod's last temp basal result.
func (m *Manager) CancelTempBasal(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "CancelTempBasal", func() error {
		if err := m.refreshAndAssertRunningNotBolusing(ctx, conv); err != nil {
			return err
		}
		if err := m.cancelTempBasalIfActive(ctx, conv); err != nil {
			return err
		}

		status := m.pod.LastStatus
		if status == nil || status.BasalState != pod.BasalScheduled {
			return podfault.PodResponseUnexpected("basal state not Scheduled after cancel_temp_basal")
		}
		m.pod.LastTempBasalResult = nil
		return nil
	})
}

// SetBasalSchedule cancels any running temp basal, validates schedule,
// then installs it with critical_with_followup_required = false (unlike
// InjectAndStart's true, since the pod is already running and this is a
// routine schedule replacement rather than a first-time install).
func (m *Manager) SetBasalSchedule(ctx context.Context, conv *conversation.Conversation, schedule [48]float64, utcOffsetMinutes int) {
	m.runOp(conv, "SetBasalSchedule", func() error {
		if err := m.refreshAndAssertRunningNotBolusing(ctx, conv); err != nil {
			return err
		}
		if err := m.cancelTempBasalIfActive(ctx, conv); err != nil {
			return err
		}
		if err := assertBasalScheduleValid(schedule[:]); err != nil {
			return err
		}
		return m.exchangeBasalSchedule(ctx, conv, schedule, utcOffsetMinutes, false)
	})
}

func (m *Manager) refreshAndAssertRunningNotBolusing(ctx context.Context, conv *conversation.Conversation) error {
	if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
		return m.lastExchangeErr(conv)
	}
	if err := m.assertRunningStatus(); err != nil {
		return err
	}
	return m.assertImmediateBolusInactive()
}

func (m *Manager) cancelTempBasalIfActive(ctx context.Context, conv *conversation.Conversation) error {
	status := m.pod.LastStatus
	if status == nil || status.BasalState != pod.BasalTemporary {
		return nil
	}
	req := message.NewBuilder().CancelTempBasal().Build()
	if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
		return m.lastExchangeErr(conv)
	}
	status = m.pod.LastStatus
	if status == nil || status.BasalState == pod.BasalTemporary {
		return podfault.PodResponseUnexpected("basal state still Temporary after cancel_temp_basal")
	}
	return nil
}
