package exchange

import "github.com/pod-control/pcm/internal/nonce"

// TxPower is a transmit power level override for one exchange.
type TxPower int

const (
	TxNormal TxPower = iota
	A3_BelowNormal
)

// Parameters controls one radio exchange: address overrides, transmit
// power, sequence override, auto-level-adjust, and the critical/repeat
// flags. The zero value is not valid on its own; use
// Manager.GetStandardParameters as the base and override selectively.
type Parameters struct {
	Nonce                        *nonce.Generator
	AllowAutoLevelAdjustment     bool
	AddressOverride              *uint32
	AckAddressOverride           *uint32
	TransmissionLevelOverride    *TxPower
	MessageSequenceOverride      *uint8
	RepeatFirstPacket            bool
	CriticalWithFollowupRequired bool
}
