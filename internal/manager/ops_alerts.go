package manager

import (
	"context"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// AcknowledgeAlerts clears the bits set in mask from the pod's alert mask.
// Preserves the source's "pod must be active" intent — progress at least
// PairingSuccess, below ErrorShuttingDown, and not AlertExpiredShuttingDown
// — rather than the source's exact (and partly unreachable) comparison
// chain.
func (m *Manager) AcknowledgeAlerts(ctx context.Context, conv *conversation.Conversation, mask uint8) {
	m.runOp(conv, "AcknowledgeAlerts", func() error {
		if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}
		if err := m.assertImmediateBolusInactive(); err != nil {
			return err
		}

		status := m.pod.LastStatus
		if status == nil ||
			status.Progress < pod.PairingSuccess ||
			status.Progress >= pod.ErrorShuttingDown ||
			status.Progress == pod.AlertExpiredShuttingDown {
			return podfault.PodStateInvalidForCommand("pod is not in an active state for alert acknowledgement")
		}
		if status.AlertMask&mask != mask {
			return podfault.PodStateInvalidForCommand("requested alerts are not all currently active")
		}

		req := message.NewBuilder().AcknowledgeAlerts(mask).Build()
		if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}

		status = m.pod.LastStatus
		if status == nil || status.AlertMask&mask != 0 {
			return podfault.PodResponseUnexpected("alert mask not cleared after acknowledge_alerts")
		}
		return nil
	})
}
