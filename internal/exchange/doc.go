// Package exchange defines the value objects and external contracts for a
// single radio exchange: ExchangeParameters, ExchangeProgress,
// MessageExchange, and MessageExchangeProvider.
//
// Only the interfaces internal/manager consumes from the on-air codec and
// radio driver are specified here; the codec and driver themselves are out
// of scope (spec.md §1).
package exchange
