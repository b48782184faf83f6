package config

// PollConfig holds the tunables the therapy operations use for their
// status-poll wait loops and conversation acquisition.
type PollConfig struct {
	// BolusWaitBaseMs, BolusWaitPerUnitMs parameterize the bolus wait-loop
	// formula (not_delivered/0.05)*PerUnitMs + BaseMs.
	BolusWaitBaseMs    int64
	BolusWaitPerUnitMs int64

	// PrimeWaitBaseMs, PrimeWaitPerUnitMs parameterize the purge and
	// priming wait-loop formula, the same shape as the bolus one.
	PrimeWaitBaseMs    int64
	PrimeWaitPerUnitMs int64

	// ConversationAcquireTimeoutMs is the fallback bounded-acquire wait
	// Manager.StartConversation uses whenever a caller passes a timeout
	// <= 0 rather than supplying its own.
	ConversationAcquireTimeoutMs int64
}

// NonceResyncMaxRetries is fixed at 1: "exactly one retry is attempted"
// is a protocol invariant, not a deployment tunable.
const NonceResyncMaxRetries = 1

// DefaultPollConfig returns the baseline tunables before env/file overrides.
func DefaultPollConfig() *PollConfig {
	return &PollConfig{
		BolusWaitBaseMs:              500,
		BolusWaitPerUnitMs:           2000,
		PrimeWaitBaseMs:              200,
		PrimeWaitPerUnitMs:           1000,
		ConversationAcquireTimeoutMs: 30000,
	}
}
