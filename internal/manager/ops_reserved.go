package manager

import (
	"context"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/podfault"
)

// ConfigureAlerts is a reserved slot in the therapy operation surface; it
// is not yet implemented.
func (m *Manager) ConfigureAlerts(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "ConfigureAlerts", func() error {
		return podfault.NotImplemented("ConfigureAlerts is not implemented")
	})
}

// StartExtendedBolus is a reserved slot in the therapy operation surface;
// it is not yet implemented.
func (m *Manager) StartExtendedBolus(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "StartExtendedBolus", func() error {
		return podfault.NotImplemented("StartExtendedBolus is not implemented")
	})
}

// CancelExtendedBolus is a reserved slot in the therapy operation surface;
// it is not yet implemented.
func (m *Manager) CancelExtendedBolus(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "CancelExtendedBolus", func() error {
		return podfault.NotImplemented("CancelExtendedBolus is not implemented")
	})
}

// SuspendBasal is a reserved slot in the therapy operation surface; it is
// not yet implemented.
func (m *Manager) SuspendBasal(ctx context.Context, conv *conversation.Conversation) {
	m.runOp(conv, "SuspendBasal", func() error {
		return podfault.NotImplemented("SuspendBasal is not implemented")
	})
}
