// Package manager implements the Pod Manager: the command-orchestration
// core that composes the message Builder, exchange Parameters, and a
// MessageExchangeProvider into therapy operations, enforces their
// preconditions, drives status-poll loops, reacts to nonce-sync requests,
// and persists exchange results through a Repository.
//
// One Manager is bound to exactly one pod and owns that pod's single-permit
// conversation mutex (spec.md §4.1, §5).
package manager
