// Package message provides the fluent request-message Builder and the
// typed parameter structs it assembles (opcode + parameters) for each
// therapy request the Pod Manager can issue.
package message
