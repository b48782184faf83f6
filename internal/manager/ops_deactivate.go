package manager

import (
	"context"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// Deactivate shuts the pod down permanently.
func (m *Manager) Deactivate(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "Deactivate", func() error {
		if err := m.assertPaired(); err != nil {
			return err
		}

		status := m.pod.LastStatus
		if status != nil && status.Progress >= pod.Inactive {
			return podfault.PodStateInvalidForCommand("pod is already deactivated")
		}

		req := message.NewBuilder().Deactivate().Build()
		if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}

		status = m.pod.LastStatus
		if status == nil || status.Progress != pod.Inactive {
			return podfault.PodResponseUnexpected("expected Inactive after deactivate")
		}
		return nil
	})
}
