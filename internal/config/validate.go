package config

import "fmt"

// Validate enforces the poll config's invariants: every wait-formula
// parameter must be non-negative, and the conversation-acquire fallback
// must be positive.
func Validate(cfg *PollConfig) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if cfg.BolusWaitBaseMs < 0 {
		return fmt.Errorf("bolus wait base must be non-negative, got %d", cfg.BolusWaitBaseMs)
	}
	if cfg.BolusWaitPerUnitMs < 0 {
		return fmt.Errorf("bolus wait per-unit must be non-negative, got %d", cfg.BolusWaitPerUnitMs)
	}
	if cfg.PrimeWaitBaseMs < 0 {
		return fmt.Errorf("prime wait base must be non-negative, got %d", cfg.PrimeWaitBaseMs)
	}
	if cfg.PrimeWaitPerUnitMs < 0 {
		return fmt.Errorf("prime wait per-unit must be non-negative, got %d", cfg.PrimeWaitPerUnitMs)
	}
	if cfg.ConversationAcquireTimeoutMs <= 0 {
		return fmt.Errorf("conversation acquire timeout must be positive, got %d", cfg.ConversationAcquireTimeoutMs)
	}
	return nil
}
