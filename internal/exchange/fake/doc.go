// Package fake provides a scriptable exchange.Provider for testing
// internal/manager without a real radio link, mirroring the error
// simulation and call-recording idiom of the pack's
// internal/adapter/fake.FakeAdapter.
package fake
