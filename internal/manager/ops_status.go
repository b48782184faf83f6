package manager

import (
	"context"

	"github.com/pod-control/pcm/internal/conversation"
)

// UpdateStatus issues a single standard status-poll exchange.
func (m *Manager) UpdateStatus(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "UpdateStatus", func() error {
		if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}
		return nil
	})
}
