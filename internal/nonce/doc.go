// Package nonce implements the pod's per-message nonce sequence.
//
// A Generator is seeded deterministically from a pod's lot and serial
// numbers and produces the sequence of nonces the pod expects on each
// request. It is a pure stateful object: per spec.md §9's refactor note,
// it holds no back-reference to the pod record. Callers (internal/manager)
// pass the resync seed hint explicitly when the pod rejects a nonce.
package nonce
