// Package config loads the Pod Manager's tunable timing parameters:
// poll-loop wait formulas for bolus and purge/priming delivery and the
// conversation-acquire fallback timeout. It also defines the nonce-resync
// retry limit as a fixed constant, which is not loaded or overridable.
//
// Load() layers a baseline, environment variable overrides, and an
// optional YAML file, then validates the result.
package config
