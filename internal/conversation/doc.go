// Package conversation implements the scoped, mutually-exclusive session a
// caller holds on one pod while it runs a single therapy operation: the
// cancellation token, the current exchange handle, and the terminal
// outcome flags (Canceled/Failed/Exception).
package conversation
