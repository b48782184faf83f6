package manager

import (
	"context"
	"time"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// Activate configures the pod's activation alert slot, clears
// the delivery flags, primes the cannula, and polls status until purging
// completes. Only runs the alert-setup/delivery-flags/prime sequence while
// the pod is still exactly at PairingSuccess; a pod resuming mid-purge
// (e.g. after a dropped conversation) skips straight to the poll loop.
func (m *Manager) Activate(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "Activate", func() error {
		if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}

		status := m.pod.LastStatus
		if status == nil {
			return podfault.RadioRecvTimeout("no status returned")
		}
		if status.Progress > pod.ReadyForInjection {
			return podfault.PodStateInvalidForCommand("pod already past ReadyForInjection")
		}

		if status.Progress == pod.PairingSuccess {
			if err := m.exchangeAlertSetupForActivation(ctx, conv); err != nil {
				return err
			}
			if err := m.exchangeDeliveryFlags(ctx, conv, 0, 0); err != nil {
				return err
			}
			if err := m.exchangePrimeCannula(ctx, conv); err != nil {
				return err
			}
			status = m.pod.LastStatus
			if status == nil || status.Progress != pod.Purging {
				return podfault.PodResponseUnexpected("expected Purging after prime_cannula")
			}
		}

		for {
			status = m.pod.LastStatus
			if status == nil || status.Progress != pod.Purging {
				break
			}
			wait := computeWaitMs(status.NotDeliveredInsulin, m.primeWaitBaseMs, m.primeWaitPerUnitMs)
			if !m.sleepOrCancel(conv, time.Duration(wait)*time.Millisecond) {
				conv.MarkCanceled()
				return nil
			}
			if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
				return m.lastExchangeErr(conv)
			}
		}

		status = m.pod.LastStatus
		if status == nil || status.Progress != pod.ReadyForInjection {
			return podfault.PodResponseUnexpected("expected ReadyForInjection after purge completes")
		}
		return nil
	})
}

// exchangeAlertSetupForActivation configures the single alert slot Activate
// uses: slot 7, firing after 5 minutes with a four-times beep that repeats
// every five minutes for its 55-minute duration. It is sent with message
// sequence override 2.
func (m *Manager) exchangeAlertSetupForActivation(ctx context.Context, conv *conversation.Conversation) error {
	slots := []message.AlertSlot{
		{
			Activate:          true,
			AlertIndex:        7,
			AlertAfterMinutes: 5,
			AlertDuration:     55,
			Beep:              message.BipBeepFourTimes,
			Repeat:            message.OnceEveryFiveMinutes,
		},
	}
	seq := uint8(2)
	params := m.GetStandardParameters()
	params.MessageSequenceOverride = &seq
	req := message.NewBuilder().AlertSetup(slots).Build()
	if _, ok := m.performExchange(ctx, conv, req, params, nil); !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}

func (m *Manager) exchangeDeliveryFlags(ctx context.Context, conv *conversation.Conversation, flagA, flagB uint8) error {
	req := message.NewBuilder().DeliveryFlags(flagA, flagB).Build()
	if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}

func (m *Manager) exchangePrimeCannula(ctx context.Context, conv *conversation.Conversation) error {
	req := message.NewBuilder().PrimeCannula().Build()
	if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}
