package manager

import (
	"context"
	"time"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// Bolus delivers an immediate dose. If waitForFinish, it polls status
// until delivery completes or the conversation's cancellation token
// fires, in which case it sends cancel_bolus and records whether the
// cancellation actually took.
func (m *Manager) Bolus(ctx context.Context, conv *conversation.Conversation, amountUnits float64, waitForFinish bool) {
	m.runOp(conv, "Bolus", func() error {
		if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}
		if err := m.assertRunningStatus(); err != nil {
			return err
		}
		if err := m.assertImmediateBolusInactive(); err != nil {
			return err
		}
		if err := assertBolusAmountValid(amountUnits); err != nil {
			return err
		}

		req := message.NewBuilder().Bolus(amountUnits).Build()
		if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}

		status := m.pod.LastStatus
		if status == nil || status.BolusState != pod.BolusImmediate {
			return podfault.PodResponseUnexpected("bolus did not enter Immediate state")
		}

		if !waitForFinish {
			return nil
		}

		for {
			status = m.pod.LastStatus
			if status == nil || status.BolusState != pod.BolusImmediate {
				break
			}
			wait := computeWaitMs(status.NotDeliveredInsulin, m.bolusWaitBaseMs, m.bolusWaitPerUnitMs)
			if m.sleepOrCancel(conv, time.Duration(wait)*time.Millisecond) {
				if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
					return m.lastExchangeErr(conv)
				}
				continue
			}

			cancelReq := message.NewBuilder().CancelBolus().Build()
			_, cancelOK := m.performExchange(ctx, conv, cancelReq, m.GetStandardParameters(), nil)
			status = m.pod.LastStatus
			if !cancelOK || status == nil || status.BolusState == pod.BolusImmediate {
				conv.CancelFailed()
			} else {
				conv.MarkCanceled()
			}
			break
		}

		if !conv.Canceled && !conv.CancelFailed_ && !conv.Failed {
			status = m.pod.LastStatus
			if status == nil || status.NotDeliveredInsulin != 0 {
				return podfault.PodResponseUnexpected("bolus finished with undelivered insulin remaining")
			}
		}
		return nil
	})
}

// CancelBolus cancels an in-progress immediate bolus. Unlike most other
// operations it does not refresh status first: the caller is expected to
// already know a bolus is in flight (typically from its own Bolus call).
func (m *Manager) CancelBolus(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "CancelBolus", func() error {
		if err := m.assertRunningStatus(); err != nil {
			return err
		}
		if err := m.assertImmediateBolusActive(); err != nil {
			return err
		}

		req := message.NewBuilder().CancelBolus().Build()
		if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}

		status := m.pod.LastStatus
		if status == nil || status.BolusState != pod.BolusInactive {
			return podfault.PodResponseUnexpected("bolus state not Inactive after cancel_bolus")
		}
		return nil
	})
}
