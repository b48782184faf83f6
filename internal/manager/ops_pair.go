package manager

import (
	"context"
	"time"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/exchange"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/nonce"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// Pair walks a fresh pod from tank-fill through pairing success: an
// address-assignment exchange (only while still below TankFillCompleted),
// then a setup_pod exchange (only while still below PairingSuccess),
// each issued at the reduced A3_BelowNormal transmit level with the
// radio-address override pair the protocol requires before the pod has
// accepted its permanent address.
func (m *Manager) Pair(ctx context.Context, conv *conversation.Conversation, utcOffsetMinutes int) {
	m.runOp(conv, "Pair", func() error {
		if err := m.assertNotPaired(); err != nil {
			return err
		}

		status := m.pod.LastStatus
		if status == nil || status.Progress < pod.TankFillCompleted {
			if err := m.exchangeAssignAddress(ctx, conv); err != nil {
				return err
			}
			status = m.pod.LastStatus
			if status == nil {
				return podfault.RadioRecvTimeout("no status returned after assign_address")
			}
			if status.Progress < pod.TankFillCompleted {
				return podfault.PodResponseUnexpected("pod did not reach TankFillCompleted after assign_address")
			}
		}

		status = m.pod.LastStatus
		if status.Progress < pod.PairingSuccess {
			if err := m.exchangeSetupPod(ctx, conv, utcOffsetMinutes); err != nil {
				return err
			}
			if m.pod.Lot != nil && m.pod.Serial != nil {
				m.nonceGen = nonce.New(*m.pod.Lot, *m.pod.Serial)
			}
		}

		return m.assertPaired()
	})
}

func (m *Manager) exchangeAssignAddress(ctx context.Context, conv *conversation.Conversation) error {
	addrOverride := uint32(0xFFFFFFFF)
	ackOverride := m.pod.RadioAddress
	tx := exchange.A3_BelowNormal

	params := m.GetStandardParameters()
	params.AllowAutoLevelAdjustment = false
	params.AddressOverride = &addrOverride
	params.AckAddressOverride = &ackOverride
	params.TransmissionLevelOverride = &tx

	req := message.NewBuilder().AssignAddress(m.pod.RadioAddress).Build()
	_, ok := m.performExchange(ctx, conv, req, params, nil)
	if !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}

func (m *Manager) exchangeSetupPod(ctx context.Context, conv *conversation.Conversation, utcOffsetMinutes int) error {
	now := time.Now().UTC()
	activationDate := now
	m.pod.ActivationDate = &activationDate
	podDate := toPodDate(now.Add(time.Duration(utcOffsetMinutes) * time.Minute))

	addrOverride := uint32(0xFFFFFFFF)
	ackOverride := m.pod.RadioAddress
	tx := exchange.A3_BelowNormal
	seq := uint8(1)

	params := m.GetStandardParameters()
	params.AllowAutoLevelAdjustment = false
	params.AddressOverride = &addrOverride
	params.AckAddressOverride = &ackOverride
	params.TransmissionLevelOverride = &tx
	params.MessageSequenceOverride = &seq

	req := message.NewBuilder().SetupPod(derefUint32(m.pod.Lot), derefUint32(m.pod.Serial), m.pod.RadioAddress, podDate).Build()
	_, ok := m.performExchange(ctx, conv, req, params, nil)
	if !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}
