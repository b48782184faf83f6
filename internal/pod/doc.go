// Package pod defines the Pod State Record and its supporting types.
//
// The record is the authoritative in-memory snapshot of one pod's identity,
// last-known status, and runtime flags. It is mutated only by exchange
// parsing and by the orchestrator in internal/manager, under the pod's
// conversation mutex.
package pod
